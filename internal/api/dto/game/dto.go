package game

import (
	"time"

	"github.com/shopspring/decimal"
)

// Денежные суммы сериализуются строками ("12.50")

type StartRequest struct {
	Bet        decimal.Decimal `json:"bet"`         // Ставка, > 0
	SkillLevel int             `json:"skill_level"` // 1..10, 0 - по умолчанию
}

type StartResponse struct {
	SessionID      string           `json:"session_id"`
	IsDemo         bool             `json:"is_demo"`
	Bet            decimal.Decimal  `json:"bet"`
	MaxScore       int64            `json:"max_score"`                 // Сверх этого очки не приносят денег
	DemoMultiplier *decimal.Decimal `json:"demo_multiplier,omitempty"` // Только в демо
}

type CompleteRequest struct {
	SessionID string          `json:"session_id"`
	Score     int64           `json:"score"`
	Bet       decimal.Decimal `json:"bet"` // Только в демо
}

type CompleteResponse struct {
	Payout    decimal.Decimal  `json:"payout"`
	IsWin     bool             `json:"is_win"`
	IsJackpot bool             `json:"is_jackpot"`
	Balance   *decimal.Decimal `json:"balance,omitempty"` // Баланс после зачисления, нет в демо
}

type JackpotResponse struct {
	CurrentAmount decimal.Decimal  `json:"current_amount"`
	LastWinAmount *decimal.Decimal `json:"last_win_amount,omitempty"`
	LastWinDate   *time.Time       `json:"last_win_date,omitempty"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"` // Сумма пополнения
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}
