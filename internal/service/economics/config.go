package economics

import (
	"context"
	"errors"

	"tetrabet_backend/internal/model"
)

// GetConfig - текущая версия конфигурации
func (s *serv) GetConfig(ctx context.Context) (*model.EconomicConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, model.Persistence("get economic config", err)
	}

	// Хранилище пустое: сохраняем значения по умолчанию первой версией
	seed := s.defaults
	if _, err := s.repo.CreateConfig(ctx, &seed); err != nil {
		// параллельный запрос мог успеть создать первую версию
		if cfg, getErr := s.repo.GetConfig(ctx); getErr == nil {
			return cfg, nil
		}
		return nil, model.Persistence("seed economic config", err)
	}

	s.log.Info("economic config seeded with defaults", "version", seed.Version)
	return &seed, nil
}

// UpdateConfig - применяет частичное обновление и сохраняет его новой версией
func (s *serv) UpdateConfig(ctx context.Context, patch model.EconomicConfigPatch) (*model.EconomicConfig, error) {
	if patch == (model.EconomicConfigPatch{}) {
		return nil, model.Invalid("nothing to update")
	}

	var next model.EconomicConfig
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.GetConfig(txCtx)
		if err != nil {
			return err
		}

		next = patch.Apply(*current)
		if err := next.Validate(s.bands); err != nil {
			return err
		}

		_, err = s.repo.CreateConfig(txCtx, &next)
		return err
	})
	if err != nil {
		return nil, model.Persistence("update economic config", err)
	}

	s.log.Info("economic config updated",
		"version", next.Version,
		"player_share_pct", next.PlayerSharePct.String(),
		"platform_share_pct", next.PlatformSharePct.String(),
		"jackpot_share_pct", next.JackpotSharePct.String(),
	)
	return &next, nil
}
