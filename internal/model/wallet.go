package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType - тип движения по кошельку
type TransactionType string

const (
	TxDeposit TransactionType = "deposit"
	TxGameBet TransactionType = "game_bet"
	TxGameWin TransactionType = "game_win"
)

// WalletTransaction - запись о движении средств игрока
type WalletTransaction struct {
	ID        uuid.UUID
	UserID    int
	Type      TransactionType
	Amount    decimal.Decimal
	// Пустые для пополнений
	SlotID    uuid.NullUUID
	SessionID uuid.NullUUID
	CreatedAt time.Time
}

// WholeCents - сумма без долей копейки. Денежные колонки хранят два знака после запятой
func WholeCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(2))
}
