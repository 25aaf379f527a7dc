package batch

import (
	"context"

	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
)

// ActivateBatch - делает пачку единственной активной
func (s *serv) ActivateBatch(ctx context.Context, id uuid.UUID) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.batchRepo.ActivateBatch(txCtx, id)
	})
	if err != nil {
		return model.Persistence("activate batch", err)
	}

	s.log.Info("batch activated", "batch_id", id)
	return nil
}

// DeactivateBatch - снимает пачку с игры. Игра на деньги блокируется до следующей активации
func (s *serv) DeactivateBatch(ctx context.Context, id uuid.UUID) error {
	if err := s.batchRepo.DeactivateBatch(ctx, id); err != nil {
		return model.Persistence("deactivate batch", err)
	}

	s.log.Info("batch deactivated", "batch_id", id)
	return nil
}

func (s *serv) ListBatches(ctx context.Context) ([]model.GameBatch, error) {
	batches, err := s.batchRepo.ListBatches(ctx)
	if err != nil {
		return nil, model.Persistence("list batches", err)
	}
	return batches, nil
}

func (s *serv) GetActiveBatch(ctx context.Context) (*model.GameBatch, error) {
	batch, err := s.batchRepo.GetActiveBatch(ctx)
	if err != nil {
		return nil, model.Persistence("get active batch", err)
	}
	return batch, nil
}
