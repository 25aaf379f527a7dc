package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResultType - класс результата слота
type ResultType string

const (
	ResultLoss    ResultType = "loss"
	ResultWin     ResultType = "win"
	ResultJackpot ResultType = "jackpot"
)

// Tier - уровень выигрыша, из которого был вытянут слот
type Tier int

const (
	TierSmall Tier = iota
	TierMedium
	TierBig
	TierHuge
	TierJackpot
)

var tierNames = [...]string{"small", "medium", "big", "huge", "jackpot"}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return "unknown"
	}
	return tierNames[t]
}

const (
	MinSkill = 1
	MaxSkill = 10
	// DefaultSkill подставляется, если клиент не указал уровень
	DefaultSkill = 5
)

// Slot - одна заранее сгенерированная игра
type Slot struct {
	ID        uuid.UUID
	BatchID   uuid.UUID
	GameIndex int
	Tier      Tier

	BetAmount          decimal.Decimal
	MaxAchievableScore int64
	ResultType         ResultType
	// Есть только у win и jackpot
	WinMultiplier    decimal.NullDecimal
	ExpectedPayout   decimal.Decimal
	SkillRequirement int

	// Резерв слота за игровой сессией
	SessionID *uuid.UUID
	ClaimedAt *time.Time

	IsPlayed     bool
	PlayedAt     *time.Time
	ActualScore  *int64
	ActualPayout decimal.NullDecimal
}

// SlotFilter - окно поиска свободного слота.
// Нулевые MinSkill/MaxSkill означают отсутствие ограничения по навыку
type SlotFilter struct {
	BatchID  uuid.UUID
	MinBet   decimal.NullDecimal
	MaxBet   decimal.NullDecimal
	MinSkill int
	MaxSkill int
}

// SlotStatus - фильтр выборки слотов для предпросмотра пачки
type SlotStatus string

const (
	SlotStatusAll      SlotStatus = "all"
	SlotStatusPlayed   SlotStatus = "played"
	SlotStatusUnplayed SlotStatus = "unplayed"
)

// SlotSort - порядок выборки слотов для предпросмотра пачки
type SlotSort string

const (
	SortTargetScore SlotSort = "target_score"
	SortMaxPayout   SlotSort = "max_payout"
	SortPlayedAt    SlotSort = "played_at"
	SortGameIndex   SlotSort = "game_index"
)

// SlotQuery - параметры предпросмотра пачки
type SlotQuery struct {
	BatchID uuid.UUID
	Status  SlotStatus
	Sort    SlotSort
	Limit   int
	Offset  int
}

// PlayedSlot - результат завершения слота
type PlayedSlot struct {
	SlotID       uuid.UUID
	ActualScore  int64
	ActualPayout decimal.Decimal
	PlayedAt     time.Time
}
