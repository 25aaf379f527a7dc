package game

import (
	"context"
	"errors"
	"strconv"

	"tetrabet_backend/internal/metrics"
	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// window - окно допуска при подборе слота
type window struct {
	minBet, maxBet decimal.Decimal
	// -1 - навык не ограничен
	skillSpread int
}

// Окна расширяются, пока не найдётся слот
var windows = [...]window{
	{minBet: decimal.RequireFromString("0.9"), maxBet: decimal.RequireFromString("1.1"), skillSpread: 2},
	{minBet: decimal.RequireFromString("0.7"), maxBet: decimal.RequireFromString("1.3"), skillSpread: 2},
	{minBet: decimal.RequireFromString("0.5"), maxBet: decimal.RequireFromString("2.0"), skillSpread: 2},
	{minBet: decimal.RequireFromString("0.1"), maxBet: decimal.RequireFromString("5.0"), skillSpread: -1},
}

// Reserve - подбирает свободный слот пачки под ставку и навык.
// Возвращает model.ErrNoMatchingSlot, только если свободных слотов в пачке нет
func (s *serv) Reserve(ctx context.Context, batchID uuid.UUID, bet decimal.Decimal, skill int) (*model.Slot, error) {
	if !bet.IsPositive() {
		return nil, model.Invalid("bet must be positive, got %s", bet)
	}
	skill, err := normalizeSkill(skill)
	if err != nil {
		return nil, err
	}

	for i, w := range windows {
		filter := model.SlotFilter{
			BatchID: batchID,
			MinBet:  decimal.NewNullDecimal(bet.Mul(w.minBet)),
			MaxBet:  decimal.NewNullDecimal(bet.Mul(w.maxBet)),
		}
		if w.skillSpread >= 0 {
			filter.MinSkill = max(model.MinSkill, skill-w.skillSpread)
			filter.MaxSkill = min(model.MaxSkill, skill+w.skillSpread)
		}

		slot, err := s.slotRepo.FindAvailableSlot(ctx, filter)
		if err == nil {
			metrics.MatcherWindowHits.WithLabelValues(strconv.Itoa(i + 1)).Inc()
			return slot, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, model.Persistence("find slot", err)
		}
	}

	// Ни одно окно не подошло: берём самый ранний свободный слот
	slot, err := s.slotRepo.FindAvailableSlot(ctx, model.SlotFilter{BatchID: batchID})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNoMatchingSlot
		}
		return nil, model.Persistence("find slot", err)
	}

	metrics.MatcherWindowHits.WithLabelValues("fallback").Inc()
	return slot, nil
}

func normalizeSkill(skill int) (int, error) {
	if skill == 0 {
		return model.DefaultSkill, nil
	}
	if skill < model.MinSkill || skill > model.MaxSkill {
		return 0, model.Invalid("skill_level must be in [%d, %d], got %d", model.MinSkill, model.MaxSkill, skill)
	}
	return skill, nil
}
