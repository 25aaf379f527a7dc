package batch

import (
	crand "crypto/rand"
	"log/slog"
	"math/rand/v2"

	"tetrabet_backend/internal/repository"
	"tetrabet_backend/internal/service"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/jonboulle/clockwork"
)

// SourceFactory - источник случайности для одной генерации пачки
type SourceFactory func() rand.Source

// CryptoSeeded - ChaCha8 с seed из crypto/rand
func CryptoSeeded() rand.Source {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.NewChaCha8(seed)
}

type serv struct {
	economics     service.EconomicsService
	batchRepo     repository.BatchRepository
	slotRepo      repository.SlotRepository
	jackpotRepo   repository.JackpotRepository
	txManager     trm.Manager
	newSource     SourceFactory
	maxBatchGames int
	clock         clockwork.Clock
	log           *slog.Logger
}

// NewBatchService - генерация пачек и управление активной пачкой
func NewBatchService(
	economics service.EconomicsService,
	batchRepo repository.BatchRepository,
	slotRepo repository.SlotRepository,
	jackpotRepo repository.JackpotRepository,
	txManager trm.Manager,
	newSource SourceFactory,
	maxBatchGames int,
	clock clockwork.Clock,
	log *slog.Logger,
) service.BatchService {
	if newSource == nil {
		newSource = CryptoSeeded
	}
	return &serv{
		economics:     economics,
		batchRepo:     batchRepo,
		slotRepo:      slotRepo,
		jackpotRepo:   jackpotRepo,
		txManager:     txManager,
		newSource:     newSource,
		maxBatchGames: maxBatchGames,
		clock:         clock,
		log:           log,
	}
}
