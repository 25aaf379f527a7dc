package economics

import (
	"log/slog"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository"
	"tetrabet_backend/internal/service"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type serv struct {
	repo      repository.EconomicConfigRepository
	defaults  model.EconomicConfig
	bands     model.ShareBands
	txManager trm.Manager
	log       *slog.Logger
}

// NewEconomicsService - хранение версий экономической конфигурации.
// defaults сохраняются первой версией, если хранилище пустое
func NewEconomicsService(
	repo repository.EconomicConfigRepository,
	defaults model.EconomicConfig,
	bands model.ShareBands,
	txManager trm.Manager,
	log *slog.Logger,
) service.EconomicsService {
	return &serv{
		repo:      repo,
		defaults:  defaults,
		bands:     bands,
		txManager: txManager,
		log:       log,
	}
}
