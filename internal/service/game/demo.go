package game

import (
	"tetrabet_backend/internal/metrics"
	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
)

// startDemo - синтетическая игра без слота и без записи в хранилище
func (s *serv) startDemo(req model.StartGame) (*model.SessionHandle, error) {
	metrics.GamesStartedTotal.WithLabelValues("demo").Inc()

	return &model.SessionHandle{
		SessionID:      uuid.New(),
		IsDemo:         true,
		BetAmount:      req.BetAmount,
		MaxScore:       s.demo.ReferenceScore,
		DemoMultiplier: s.demo.Multiplier,
	}, nil
}

// completeDemo - оценка выигрыша: (score / reference) * multiplier * gain_rate от ставки.
// Ничего не сохраняет
func (s *serv) completeDemo(req model.CompleteGame) (*model.GameOutcome, error) {
	if !req.BetAmount.IsPositive() {
		return nil, model.Invalid("bet must be positive, got %s", req.BetAmount)
	}

	ratio := ScoreRatio(req.Score, s.demo.ReferenceScore)
	payout := ratio.
		Mul(s.demo.Multiplier).
		Mul(s.demo.GainRate).
		Mul(req.BetAmount).
		Floor()

	out := &model.GameOutcome{
		Payout: payout,
		IsWin:  payout.IsPositive(),
	}

	result := model.ResultLoss
	if out.IsWin {
		result = model.ResultWin
	}
	metrics.RecordCompletion("demo", string(result), 0)

	return out, nil
}
