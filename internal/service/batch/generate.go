package batch

import (
	"context"
	"strings"

	"tetrabet_backend/internal/metrics"
	"tetrabet_backend/internal/model"
)

// GenerateBatch - генерирует пачку и сохраняет её вместе со слотами одной транзакцией.
// Доля джекпота сразу поступает в пул
func (s *serv) GenerateBatch(ctx context.Context, req model.GenerateBatch) (*model.GameBatch, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, model.Invalid("batch name is required")
	}
	if req.TotalGames > s.maxBatchGames {
		return nil, model.Invalid("total_games must not exceed %d, got %d", s.maxBatchGames, req.TotalGames)
	}

	cfg, err := s.economics.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	start := s.clock.Now()

	batch, slots, err := Generate(s.newSource(), req, *cfg)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.batchRepo.CreateBatch(txCtx, batch); err != nil {
			return err
		}
		if err := s.slotRepo.InsertSlots(txCtx, slots); err != nil {
			return err
		}
		return s.jackpotRepo.AddJackpotContribution(txCtx, batch.JackpotContributionTarget)
	})
	if err != nil {
		return nil, model.Persistence("persist batch", err)
	}

	metrics.BatchesGeneratedTotal.Inc()
	metrics.BatchGenerationDuration.Observe(s.clock.Since(start).Seconds())

	s.log.Info("batch generated",
		"batch_id", batch.ID,
		"name", batch.Name,
		"total_games", batch.TotalGames,
		"config_version", batch.ConfigVersion,
		"player_payout_target", batch.PlayerPayoutTarget.String(),
		"planned_payout", plannedPayout(slots).String(),
	)

	return batch, nil
}
