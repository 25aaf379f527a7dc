package service

import (
	"context"

	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EconomicsService interface {
	// GetConfig возвращает текущую версию, при пустом хранилище сохраняет значения по умолчанию
	GetConfig(ctx context.Context) (*model.EconomicConfig, error)
	UpdateConfig(ctx context.Context, patch model.EconomicConfigPatch) (*model.EconomicConfig, error)
}

type BatchService interface {
	GenerateBatch(ctx context.Context, req model.GenerateBatch) (*model.GameBatch, error)
	ActivateBatch(ctx context.Context, id uuid.UUID) error
	DeactivateBatch(ctx context.Context, id uuid.UUID) error
	ListBatches(ctx context.Context) ([]model.GameBatch, error)
	GetActiveBatch(ctx context.Context) (*model.GameBatch, error)
	BatchProgress(ctx context.Context, id uuid.UUID) (*model.BatchReport, error)
	ListSlots(ctx context.Context, query model.SlotQuery) ([]model.Slot, error)
}

type GameService interface {
	// Reserve подбирает свободный слот пачки, ничего не изменяя
	Reserve(ctx context.Context, batchID uuid.UUID, bet decimal.Decimal, skill int) (*model.Slot, error)
	StartGame(ctx context.Context, req model.StartGame) (*model.SessionHandle, error)
	CompleteGame(ctx context.Context, req model.CompleteGame) (*model.GameOutcome, error)
	GetJackpot(ctx context.Context) (*model.JackpotPool, error)
}

type WalletService interface {
	Deposit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error)
	GetBalance(ctx context.Context, userID int) (decimal.Decimal, error)
}
