package converter

import (
	"time"

	dto "tetrabet_backend/internal/api/dto/game"
	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func ToStartGame(userID int, req dto.StartRequest, demo bool) model.StartGame {
	return model.StartGame{
		UserID:     userID,
		BetAmount:  req.Bet,
		SkillLevel: req.SkillLevel,
		IsDemo:     demo,
	}
}

func ToStartResponse(h model.SessionHandle) dto.StartResponse {
	out := dto.StartResponse{
		SessionID: h.SessionID.String(),
		IsDemo:    h.IsDemo,
		Bet:       h.BetAmount,
		MaxScore:  h.MaxScore,
	}
	if h.IsDemo {
		m := h.DemoMultiplier
		out.DemoMultiplier = &m
	}
	return out
}

// ToCompleteGame - в демо session_id не проверяется, в реальной игре обязан быть UUID
func ToCompleteGame(userID int, req dto.CompleteRequest, demo bool) (model.CompleteGame, error) {
	out := model.CompleteGame{
		UserID:    userID,
		Score:     req.Score,
		IsDemo:    demo,
		BetAmount: req.Bet,
	}
	if demo {
		return out, nil
	}

	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		return model.CompleteGame{}, model.Invalid("session_id must be a UUID")
	}
	out.SessionID = id
	return out, nil
}

func ToCompleteResponse(o model.GameOutcome, balance *decimal.Decimal) dto.CompleteResponse {
	return dto.CompleteResponse{
		Payout:    o.Payout,
		IsWin:     o.IsWin,
		IsJackpot: o.IsJackpot,
		Balance:   balance,
	}
}

func ToPlayerJackpotResponse(p model.JackpotPool) dto.JackpotResponse {
	return dto.JackpotResponse{
		CurrentAmount: p.CurrentAmount,
		LastWinAmount: nullDecimal(p.LastWinAmount),
		LastWinDate:   utc(p.LastWinDate),
	}
}

func ToBalanceResponse(balance decimal.Decimal) dto.BalanceResponse {
	return dto.BalanceResponse{Balance: balance}
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
