package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameBatch - профинансированная когорта заранее сгенерированных игр
type GameBatch struct {
	ID            uuid.UUID
	Name          string
	ConfigVersion int

	TotalGames      int
	AverageBet      decimal.Decimal
	TotalInvestment decimal.Decimal

	// Цели фиксируются при создании пачки
	PlayerPayoutTarget        decimal.Decimal
	PlatformRevenueTarget     decimal.Decimal
	JackpotContributionTarget decimal.Decimal

	// Фактические значения растут по мере завершения игр
	ActualPlayerPayout        decimal.Decimal
	ActualPlatformRevenue     decimal.Decimal
	ActualJackpotContribution decimal.Decimal
	GamesPlayed               int

	IsActive  bool
	CreatedAt time.Time
}

// PlatformShare доля платформы от ставки, восстановленная из целей пачки
func (b *GameBatch) PlatformShare() decimal.Decimal {
	if b.TotalInvestment.IsZero() {
		return decimal.Zero
	}
	return b.PlatformRevenueTarget.Div(b.TotalInvestment)
}

// JackpotShare доля джекпота от ставки, восстановленная из целей пачки
func (b *GameBatch) JackpotShare() decimal.Decimal {
	if b.TotalInvestment.IsZero() {
		return decimal.Zero
	}
	return b.JackpotContributionTarget.Div(b.TotalInvestment)
}

// BatchProgress - дельты агрегатов пачки после завершения одной игры
type BatchProgress struct {
	GamesPlayed         int
	PlayerPayout        decimal.Decimal
	PlatformRevenue     decimal.Decimal
	JackpotContribution decimal.Decimal
}

// ResultCount - количество слотов одного типа результата
type ResultCount struct {
	ResultType ResultType
	Total      int
	Played     int
	Expected   decimal.Decimal
	Paid       decimal.Decimal
}

// BatchReport - прогресс пачки для консоли оператора
type BatchReport struct {
	Batch       GameBatch
	Remaining   int
	PlayedPct   float64
	PayoutPct   float64
	PlannedWins decimal.Decimal
	ByResult    []ResultCount
}

// GenerateBatch - запрос оператора на генерацию пачки
type GenerateBatch struct {
	Name       string
	TotalGames int
	AverageBet decimal.Decimal
}
