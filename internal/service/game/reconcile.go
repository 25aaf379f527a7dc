package game

import (
	"tetrabet_backend/internal/model"

	"github.com/shopspring/decimal"
)

var (
	winThreshold     = decimal.RequireFromString("0.5")
	jackpotThreshold = decimal.RequireFromString("0.8")
)

// ScoreRatio - доля набранных очков от потолка слота, не больше 1
func ScoreRatio(score, maxScore int64) decimal.Decimal {
	if maxScore <= 0 {
		return decimal.NewFromInt(1)
	}
	ratio := decimal.NewFromInt(score).Div(decimal.NewFromInt(maxScore))
	return decimal.Min(ratio, decimal.NewFromInt(1))
}

// Payout - выплата за слот при данном счёте. Никогда не превышает expected_payout
func Payout(slot *model.Slot, score int64) model.GameOutcome {
	ratio := ScoreRatio(score, slot.MaxAchievableScore)

	var out model.GameOutcome
	switch slot.ResultType {
	case model.ResultWin:
		if ratio.GreaterThanOrEqual(winThreshold) {
			out.Payout = slot.ExpectedPayout.Mul(ratio).Floor()
		}
	case model.ResultJackpot:
		if ratio.GreaterThanOrEqual(jackpotThreshold) {
			out.Payout = slot.ExpectedPayout.Floor()
			out.IsJackpot = out.Payout.IsPositive()
		}
	}

	out.IsWin = out.Payout.IsPositive()
	return out
}
