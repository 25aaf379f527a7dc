package game

import (
	"context"
	"errors"

	"tetrabet_backend/internal/metrics"
	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
)

// CompleteGame - фиксирует результат игры: слот сыгран, агрегаты пачки растут,
// джекпот выплачивается, выигрыш зачисляется. Всё в одной транзакции
func (s *serv) CompleteGame(ctx context.Context, req model.CompleteGame) (*model.GameOutcome, error) {
	if req.Score < 0 {
		return nil, model.Invalid("score must not be negative, got %d", req.Score)
	}
	if req.IsDemo {
		return s.completeDemo(req)
	}

	session, err := s.sessionRepo.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, model.Persistence("get session", err)
	}
	// чужую сессию не раскрываем
	if session.UserID != req.UserID {
		return nil, model.ErrNotFound
	}

	now := s.clock.Now()

	var (
		outcome model.GameOutcome
		slot    *model.Slot
	)
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		slot, err = s.slotRepo.GetSlot(txCtx, session.SlotID)
		if err != nil {
			return err
		}

		batch, err := s.batchRepo.GetBatch(txCtx, slot.BatchID)
		if err != nil {
			return err
		}

		outcome = Payout(slot, req.Score)

		ok, err := s.slotRepo.MarkSlotPlayed(txCtx, model.PlayedSlot{
			SlotID:       slot.ID,
			ActualScore:  req.Score,
			ActualPayout: outcome.Payout,
			PlayedAt:     now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrAlreadyConsumed
		}

		ok, err = s.sessionRepo.CompleteSession(txCtx, session.ID, req.Score, outcome.Payout, now)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrAlreadyConsumed
		}

		err = s.batchRepo.AddBatchProgress(txCtx, batch.ID, model.BatchProgress{
			GamesPlayed:         1,
			PlayerPayout:        outcome.Payout,
			PlatformRevenue:     session.BetAmount.Mul(batch.PlatformShare()).Round(2),
			JackpotContribution: session.BetAmount.Mul(batch.JackpotShare()).Round(2),
		})
		if err != nil {
			return err
		}

		if outcome.IsJackpot {
			err = s.jackpotRepo.PayJackpot(txCtx, model.JackpotWin{
				WinnerID: req.UserID,
				Amount:   outcome.Payout,
				WonAt:    now,
			})
			if err != nil {
				return err
			}
		}

		if !outcome.Payout.IsPositive() {
			return nil
		}
		return s.walletRepo.Credit(txCtx, model.WalletTransaction{
			ID:        uuid.New(),
			UserID:    req.UserID,
			Type:      model.TxGameWin,
			Amount:    outcome.Payout,
			SlotID:    uuid.NullUUID{UUID: slot.ID, Valid: true},
			SessionID: uuid.NullUUID{UUID: session.ID, Valid: true},
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyConsumed) {
			metrics.AlreadyConsumedTotal.Inc()
			s.log.Error("completion of an already played slot rejected",
				"session_id", session.ID,
				"slot_id", session.SlotID,
				"user_id", req.UserID,
			)
			return nil, model.ErrAlreadyConsumed
		}
		return nil, model.Persistence("complete game", err)
	}

	metrics.RecordCompletion("real", string(slot.ResultType), outcome.Payout.InexactFloat64())
	s.log.Debug("game completed",
		"session_id", session.ID,
		"slot_id", slot.ID,
		"score", req.Score,
		"payout", outcome.Payout.String(),
		"jackpot", outcome.IsJackpot,
	)

	return &outcome, nil
}
