package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus - состояние игровой сессии
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// GameSession - сессия игры на реальные деньги
type GameSession struct {
	ID          uuid.UUID
	UserID      int
	SlotID      uuid.UUID
	BetAmount   decimal.Decimal
	Status      SessionStatus
	Score       *int64
	Payout      decimal.NullDecimal
	StartedAt   time.Time
	CompletedAt *time.Time
}

// StartGame - запрос на старт игры
type StartGame struct {
	UserID     int
	BetAmount  decimal.Decimal
	SkillLevel int
	IsDemo     bool
}

// SessionHandle - то, что получает клиент после старта игры
type SessionHandle struct {
	SessionID uuid.UUID
	IsDemo    bool
	BetAmount decimal.Decimal
	// Потолок очков, после которого доска перестаёт приносить деньги
	MaxScore int64
	// Только для демо: фиксированный множитель
	DemoMultiplier decimal.Decimal
}

// CompleteGame - запрос на завершение игры
type CompleteGame struct {
	UserID    int
	SessionID uuid.UUID
	Score     int64
	IsDemo    bool
	// Для демо ставка приходит от клиента, сессия не хранится
	BetAmount decimal.Decimal
}

// GameOutcome - результат завершения игры
type GameOutcome struct {
	Payout    decimal.Decimal
	IsWin     bool
	IsJackpot bool
}
