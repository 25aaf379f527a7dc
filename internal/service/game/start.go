package game

import (
	"context"
	"errors"
	"fmt"

	"tetrabet_backend/internal/metrics"
	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
)

// errClaimConflict - слот успели занять между подбором и резервом
var errClaimConflict = errors.New("slot claimed concurrently")

// StartGame - подбирает слот активной пачки, резервирует его за новой сессией и списывает ставку.
// Демо-игры не трогают хранилище
func (s *serv) StartGame(ctx context.Context, req model.StartGame) (*model.SessionHandle, error) {
	if !req.BetAmount.IsPositive() {
		return nil, model.Invalid("bet must be positive, got %s", req.BetAmount)
	}
	if req.IsDemo {
		return s.startDemo(req)
	}
	if !model.WholeCents(req.BetAmount) {
		return nil, model.Invalid("bet must have at most two decimal places, got %s", req.BetAmount)
	}

	skill, err := normalizeSkill(req.SkillLevel)
	if err != nil {
		return nil, err
	}

	batch, err := s.batchRepo.GetActiveBatch(ctx)
	if err != nil {
		return nil, model.Persistence("get active batch", err)
	}

	for attempt := 1; attempt <= s.claimAttempts; attempt++ {
		slot, err := s.Reserve(ctx, batch.ID, req.BetAmount, skill)
		if err != nil {
			return nil, err
		}

		handle, err := s.claim(ctx, req, slot)
		if errors.Is(err, errClaimConflict) {
			metrics.ClaimConflictsTotal.Inc()
			s.log.Debug("slot claim conflict, retrying", "slot_id", slot.ID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, model.Persistence("start game", err)
		}

		metrics.GamesStartedTotal.WithLabelValues("real").Inc()
		s.log.Debug("game started",
			"session_id", handle.SessionID,
			"user_id", req.UserID,
			"slot_id", slot.ID,
			"bet", req.BetAmount.String(),
		)
		return handle, nil
	}

	return nil, fmt.Errorf("%w: %d claim attempts lost to concurrent games", model.ErrNoMatchingSlot, s.claimAttempts)
}

// claim - резерв слота, списание ставки и создание сессии в одной транзакции
func (s *serv) claim(ctx context.Context, req model.StartGame, slot *model.Slot) (*model.SessionHandle, error) {
	sessionID := uuid.New()
	now := s.clock.Now()

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		ok, err := s.slotRepo.ClaimSlot(txCtx, slot.ID, sessionID, now)
		if err != nil {
			return err
		}
		if !ok {
			return errClaimConflict
		}

		err = s.walletRepo.Debit(txCtx, model.WalletTransaction{
			ID:        uuid.New(),
			UserID:    req.UserID,
			Type:      model.TxGameBet,
			Amount:    req.BetAmount,
			SlotID:    uuid.NullUUID{UUID: slot.ID, Valid: true},
			SessionID: uuid.NullUUID{UUID: sessionID, Valid: true},
			CreatedAt: now,
		})
		if err != nil {
			return err
		}

		return s.sessionRepo.CreateSession(txCtx, &model.GameSession{
			ID:        sessionID,
			UserID:    req.UserID,
			SlotID:    slot.ID,
			BetAmount: req.BetAmount,
			Status:    model.SessionActive,
			StartedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	return &model.SessionHandle{
		SessionID: sessionID,
		BetAmount: req.BetAmount,
		MaxScore:  slot.MaxAchievableScore,
	}, nil
}
