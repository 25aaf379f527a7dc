package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JackpotPool - общий джекпот, единственная запись
type JackpotPool struct {
	ID                 int64
	CurrentAmount      decimal.Decimal
	TotalContributions decimal.Decimal
	TotalPayouts       decimal.Decimal
	LastWinnerID       *int
	LastWinAmount      decimal.NullDecimal
	LastWinDate        *time.Time
	UpdatedAt          time.Time
}

// JackpotWin - выплата джекпота
type JackpotWin struct {
	WinnerID int
	Amount   decimal.Decimal
	WonAt    time.Time
}
