package game

import (
	"context"

	"tetrabet_backend/internal/model"
)

// GetJackpot - текущая сумма джекпота для игроков
func (s *serv) GetJackpot(ctx context.Context) (*model.JackpotPool, error) {
	pool, err := s.jackpotRepo.GetJackpot(ctx)
	if err != nil {
		return nil, model.Persistence("get jackpot", err)
	}
	return pool, nil
}
