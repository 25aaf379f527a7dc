package batch

import (
	"context"

	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultSlotLimit = 100
	maxSlotLimit     = 1000
)

// BatchProgress - прогресс пачки: сыграно, цель против факта, разбивка по типам результата
func (s *serv) BatchProgress(ctx context.Context, id uuid.UUID) (*model.BatchReport, error) {
	batch, err := s.batchRepo.GetBatch(ctx, id)
	if err != nil {
		return nil, model.Persistence("get batch", err)
	}

	counts, err := s.slotRepo.CountSlots(ctx, id)
	if err != nil {
		return nil, model.Persistence("count slots", err)
	}

	report := &model.BatchReport{
		Batch:       *batch,
		Remaining:   batch.TotalGames - batch.GamesPlayed,
		PlannedWins: decimal.Zero,
		ByResult:    counts,
	}
	if batch.TotalGames > 0 {
		report.PlayedPct = float64(batch.GamesPlayed) / float64(batch.TotalGames) * 100
	}
	if batch.PlayerPayoutTarget.IsPositive() {
		report.PayoutPct = batch.ActualPlayerPayout.Div(batch.PlayerPayoutTarget).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	for _, c := range counts {
		if c.ResultType != model.ResultLoss {
			report.PlannedWins = report.PlannedWins.Add(c.Expected)
		}
	}

	return report, nil
}

// ListSlots - предпросмотр слотов пачки
func (s *serv) ListSlots(ctx context.Context, q model.SlotQuery) ([]model.Slot, error) {
	switch q.Status {
	case "":
		q.Status = model.SlotStatusAll
	case model.SlotStatusAll, model.SlotStatusPlayed, model.SlotStatusUnplayed:
	default:
		return nil, model.Invalid("unknown slot status %q", q.Status)
	}

	switch q.Sort {
	case "":
		q.Sort = model.SortGameIndex
	case model.SortGameIndex, model.SortTargetScore, model.SortMaxPayout, model.SortPlayedAt:
	default:
		return nil, model.Invalid("unknown slot sort %q", q.Sort)
	}

	switch {
	case q.Limit < 0 || q.Offset < 0:
		return nil, model.Invalid("limit and offset must not be negative")
	case q.Limit == 0:
		q.Limit = defaultSlotLimit
	case q.Limit > maxSlotLimit:
		q.Limit = maxSlotLimit
	}

	if _, err := s.batchRepo.GetBatch(ctx, q.BatchID); err != nil {
		return nil, model.Persistence("get batch", err)
	}

	slots, err := s.slotRepo.ListSlots(ctx, q)
	if err != nil {
		return nil, model.Persistence("list slots", err)
	}
	return slots, nil
}

// plannedPayout - сумма обещанных выплат без джекпотов
func plannedPayout(slots []model.Slot) decimal.Decimal {
	sum := decimal.Zero
	for _, sl := range slots {
		if sl.ResultType == model.ResultWin {
			sum = sum.Add(sl.ExpectedPayout)
		}
	}
	return sum
}
