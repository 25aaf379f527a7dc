package game

import (
	"log/slog"

	"tetrabet_backend/internal/config"
	"tetrabet_backend/internal/repository"
	"tetrabet_backend/internal/service"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/jonboulle/clockwork"
)

type serv struct {
	batchRepo     repository.BatchRepository
	slotRepo      repository.SlotRepository
	sessionRepo   repository.SessionRepository
	walletRepo    repository.WalletRepository
	jackpotRepo   repository.JackpotRepository
	txManager     trm.Manager
	claimAttempts int
	demo          config.DemoParams
	clock         clockwork.Clock
	log           *slog.Logger
}

// NewGameService - подбор слота, старт и завершение игры
func NewGameService(
	batchRepo repository.BatchRepository,
	slotRepo repository.SlotRepository,
	sessionRepo repository.SessionRepository,
	walletRepo repository.WalletRepository,
	jackpotRepo repository.JackpotRepository,
	txManager trm.Manager,
	claimAttempts int,
	demo config.DemoParams,
	clock clockwork.Clock,
	log *slog.Logger,
) service.GameService {
	if claimAttempts <= 0 {
		claimAttempts = 1
	}
	return &serv{
		batchRepo:     batchRepo,
		slotRepo:      slotRepo,
		sessionRepo:   sessionRepo,
		walletRepo:    walletRepo,
		jackpotRepo:   jackpotRepo,
		txManager:     txManager,
		claimAttempts: claimAttempts,
		demo:          demo,
		clock:         clock,
		log:           log,
	}
}
