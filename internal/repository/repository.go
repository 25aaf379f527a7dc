package repository

import (
	"context"
	"time"

	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Все методы работают внутри транзакции, если она открыта в ctx через trm.Manager

type EconomicConfigRepository interface {
	// GetConfig возвращает последнюю версию, model.ErrNotFound если версий нет
	GetConfig(ctx context.Context) (*model.EconomicConfig, error)
	// CreateConfig сохраняет новую версию и возвращает её номер
	CreateConfig(ctx context.Context, cfg *model.EconomicConfig) (version int, err error)
}

type BatchRepository interface {
	CreateBatch(ctx context.Context, batch *model.GameBatch) error
	GetBatch(ctx context.Context, id uuid.UUID) (*model.GameBatch, error)
	// GetActiveBatch возвращает model.ErrNoActiveBatch, если активной пачки нет
	GetActiveBatch(ctx context.Context) (*model.GameBatch, error)
	ListBatches(ctx context.Context) ([]model.GameBatch, error)
	// ActivateBatch делает пачку единственной активной
	ActivateBatch(ctx context.Context, id uuid.UUID) error
	DeactivateBatch(ctx context.Context, id uuid.UUID) error
	// AddBatchProgress атомарно прибавляет дельты к агрегатам пачки
	AddBatchProgress(ctx context.Context, id uuid.UUID, delta model.BatchProgress) error
}

type SlotRepository interface {
	InsertSlots(ctx context.Context, slots []model.Slot) error
	GetSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	// FindAvailableSlot ищет первый по game_index несыгранный и незарезервированный слот
	FindAvailableSlot(ctx context.Context, filter model.SlotFilter) (*model.Slot, error)
	// ClaimSlot резервирует слот за сессией, только если он ещё свободен
	ClaimSlot(ctx context.Context, slotID, sessionID uuid.UUID, at time.Time) (bool, error)
	// MarkSlotPlayed фиксирует результат, только если слот ещё не сыгран
	MarkSlotPlayed(ctx context.Context, played model.PlayedSlot) (bool, error)
	ListSlots(ctx context.Context, query model.SlotQuery) ([]model.Slot, error)
	CountSlots(ctx context.Context, batchID uuid.UUID) ([]model.ResultCount, error)
}

type JackpotRepository interface {
	GetJackpot(ctx context.Context) (*model.JackpotPool, error)
	AddJackpotContribution(ctx context.Context, amount decimal.Decimal) error
	// PayJackpot обнуляет текущую сумму и записывает победителя
	PayJackpot(ctx context.Context, win model.JackpotWin) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.GameSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*model.GameSession, error)
	// CompleteSession закрывает только активную сессию
	CompleteSession(ctx context.Context, id uuid.UUID, score int64, payout decimal.Decimal, at time.Time) (bool, error)
}

type WalletRepository interface {
	GetBalance(ctx context.Context, userID int) (decimal.Decimal, error)
	// Debit списывает сумму, model.ErrInsufficientBalance если средств не хватает
	Debit(ctx context.Context, tx model.WalletTransaction) error
	Credit(ctx context.Context, tx model.WalletTransaction) error
}
