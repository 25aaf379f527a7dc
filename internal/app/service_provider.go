package app

import (
	"context"
	"log/slog"
	"net/http"

	adminAPI "tetrabet_backend/internal/api/admin"
	gameAPI "tetrabet_backend/internal/api/game"
	"tetrabet_backend/internal/config"
	"tetrabet_backend/internal/config/env"
	"tetrabet_backend/internal/metrics"
	"tetrabet_backend/internal/middleware"
	"tetrabet_backend/internal/repository"
	"tetrabet_backend/internal/repository/batch_repo"
	"tetrabet_backend/internal/repository/config_repo"
	"tetrabet_backend/internal/repository/jackpot_repo"
	"tetrabet_backend/internal/repository/session_repo"
	"tetrabet_backend/internal/repository/slot_repo"
	"tetrabet_backend/internal/repository/wallet_repo"
	"tetrabet_backend/internal/service"
	"tetrabet_backend/internal/service/batch"
	"tetrabet_backend/internal/service/economics"
	"tetrabet_backend/internal/service/game"
	"tetrabet_backend/internal/service/wallet"
	"tetrabet_backend/pkg/resp"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServiceProvider struct {
	log        *slog.Logger
	clock      clockwork.Clock
	configPath string

	//TXManager
	txManager trm.Manager

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Engine bits
	engineCfg   config.EngineConfig
	configRepo  repository.EconomicConfigRepository
	batchRepo   repository.BatchRepository
	slotRepo    repository.SlotRepository
	jackpotRepo repository.JackpotRepository
	economics   service.EconomicsService
	batchServ   service.BatchService

	// Player bits
	sessionRepo repository.SessionRepository
	walletRepo  repository.WalletRepository
	gameServ    service.GameService
	walletServ  service.WalletService
	gameHand    *gameAPI.Handler

	// Operator bits
	adminCfg  config.AdminConfig
	adminHand *adminAPI.Handler

	// Router and HTTP config
	jwtCfg  config.JWTConfig
	httpCfg config.HTTPConfig
	router  chi.Router
}

func newServiceProvider(log *slog.Logger, configPath string) *ServiceProvider {
	return &ServiceProvider{
		log:        log,
		clock:      clockwork.NewRealClock(),
		configPath: configPath,
	}
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}

		sp.txManager = m
	}

	return sp.txManager
}

func (sp *ServiceProvider) EngineCfg() config.EngineConfig {
	if sp.engineCfg == nil {
		cfg, err := env.NewEngineConfigFromYAML(sp.configPath)
		if err != nil {
			panic("failed to get engine config: " + err.Error())
		}
		sp.engineCfg = cfg
	}
	return sp.engineCfg
}

func (sp *ServiceProvider) ConfigRepository(ctx context.Context) repository.EconomicConfigRepository {
	if sp.configRepo == nil {
		sp.configRepo = config_repo.NewEconomicConfigRepository(sp.DBClient(ctx))
	}
	return sp.configRepo
}

func (sp *ServiceProvider) BatchRepository(ctx context.Context) repository.BatchRepository {
	if sp.batchRepo == nil {
		sp.batchRepo = batch_repo.NewBatchRepository(sp.DBClient(ctx))
	}
	return sp.batchRepo
}

func (sp *ServiceProvider) SlotRepository(ctx context.Context) repository.SlotRepository {
	if sp.slotRepo == nil {
		sp.slotRepo = slot_repo.NewSlotRepository(sp.DBClient(ctx))
	}
	return sp.slotRepo
}

func (sp *ServiceProvider) JackpotRepository(ctx context.Context) repository.JackpotRepository {
	if sp.jackpotRepo == nil {
		sp.jackpotRepo = jackpot_repo.NewJackpotRepository(sp.DBClient(ctx))
	}
	return sp.jackpotRepo
}

func (sp *ServiceProvider) SessionRepository(ctx context.Context) repository.SessionRepository {
	if sp.sessionRepo == nil {
		sp.sessionRepo = session_repo.NewSessionRepository(sp.DBClient(ctx))
	}
	return sp.sessionRepo
}

func (sp *ServiceProvider) WalletRepository(ctx context.Context) repository.WalletRepository {
	if sp.walletRepo == nil {
		sp.walletRepo = wallet_repo.NewWalletRepository(sp.DBClient(ctx))
	}
	return sp.walletRepo
}

func (sp *ServiceProvider) EconomicsService(ctx context.Context) service.EconomicsService {
	if sp.economics == nil {
		sp.economics = economics.NewEconomicsService(
			sp.ConfigRepository(ctx),
			sp.EngineCfg().DefaultEconomics(),
			sp.EngineCfg().ShareBands(),
			sp.TXManager(ctx),
			sp.log.With("service", "economics"),
		)
	}
	return sp.economics
}

func (sp *ServiceProvider) BatchService(ctx context.Context) service.BatchService {
	if sp.batchServ == nil {
		sp.batchServ = batch.NewBatchService(
			sp.EconomicsService(ctx),
			sp.BatchRepository(ctx),
			sp.SlotRepository(ctx),
			sp.JackpotRepository(ctx),
			sp.TXManager(ctx),
			batch.CryptoSeeded,
			sp.EngineCfg().MaxBatchGames(),
			sp.clock,
			sp.log.With("service", "batch"),
		)
	}
	return sp.batchServ
}

func (sp *ServiceProvider) GameService(ctx context.Context) service.GameService {
	if sp.gameServ == nil {
		sp.gameServ = game.NewGameService(
			sp.BatchRepository(ctx),
			sp.SlotRepository(ctx),
			sp.SessionRepository(ctx),
			sp.WalletRepository(ctx),
			sp.JackpotRepository(ctx),
			sp.TXManager(ctx),
			sp.EngineCfg().ClaimAttempts(),
			sp.EngineCfg().Demo(),
			sp.clock,
			sp.log.With("service", "game"),
		)
	}
	return sp.gameServ
}

func (sp *ServiceProvider) WalletService(ctx context.Context) service.WalletService {
	if sp.walletServ == nil {
		sp.walletServ = wallet.NewWalletService(
			sp.WalletRepository(ctx),
			sp.TXManager(ctx),
			sp.clock,
			sp.log.With("service", "wallet"),
		)
	}
	return sp.walletServ
}

func (sp *ServiceProvider) GameHandler(ctx context.Context) *gameAPI.Handler {
	if sp.gameHand == nil {
		sp.gameHand = gameAPI.NewHandler(gameAPI.HandlerDeps{
			Serv:   sp.GameService(ctx),
			Wallet: sp.WalletService(ctx),
			Log:    sp.log,
		})
	}
	return sp.gameHand
}

func (sp *ServiceProvider) AdminCfg() config.AdminConfig {
	if sp.adminCfg == nil {
		cfg, err := env.NewAdminConfig()
		if err != nil {
			panic("failed to get admin config: " + err.Error())
		}
		sp.adminCfg = cfg
	}
	return sp.adminCfg
}

func (sp *ServiceProvider) AdminHandler(ctx context.Context) *adminAPI.Handler {
	if sp.adminHand == nil {
		sp.adminHand = adminAPI.NewHandler(adminAPI.HandlerDeps{
			Economics: sp.EconomicsService(ctx),
			Batches:   sp.BatchService(ctx),
			Games:     sp.GameService(ctx),
			Log:       sp.log,
		})
	}
	return sp.adminHand
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}

	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		sp.router = newRouter(routerDeps{
			log:       sp.log,
			clock:     sp.clock,
			game:      sp.GameHandler(ctx),
			admin:     sp.AdminHandler(ctx),
			jwtSecret: sp.JWTCfg().AccessTokenSecretKey(),
			adminKey:  sp.AdminCfg().KeyHash(),
			rateLimit: sp.EngineCfg().RateLimit(),
			ready: func(ctx context.Context) error {
				return sp.DBClient(ctx).Ping(ctx)
			},
		})
	}

	return sp.router
}

type routerDeps struct {
	log       *slog.Logger
	clock     clockwork.Clock
	game      *gameAPI.Handler
	admin     *adminAPI.Handler
	jwtSecret []byte
	adminKey  []byte
	rateLimit config.RateLimit
	ready     func(ctx context.Context) error
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(d.log))
	r.Use(metrics.Middleware)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.AdminKeyHeader},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.ready(r.Context()); err != nil {
			resp.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		resp.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(d.rateLimit.PerMinute, d.rateLimit.Burst, d.clock)

	// Player endpoints
	r.Group(func(rr chi.Router) {
		rr.Use(middleware.RateLimit(limiter))
		rr.Use(middleware.Auth(d.jwtSecret))

		rr.Post("/game/start", d.game.Start)
		rr.Post("/game/complete", d.game.Complete)
		rr.Get("/game/jackpot", d.game.Jackpot)
		rr.Get("/wallet/balance", d.game.Balance)
		rr.Post("/wallet/deposit", d.game.Deposit)
	})

	// Demo endpoints
	r.Group(func(rr chi.Router) {
		rr.Use(middleware.RateLimit(limiter))

		rr.Post("/demo/start", d.game.DemoStart)
		rr.Post("/demo/complete", d.game.DemoComplete)
	})

	// Operator endpoints
	r.Route("/admin", func(rr chi.Router) {
		rr.Use(middleware.AdminKey(d.adminKey))

		rr.Get("/config", d.admin.GetConfig)
		rr.Patch("/config", d.admin.UpdateConfig)
		rr.Get("/jackpot", d.admin.Jackpot)

		rr.Route("/batches", func(br chi.Router) {
			br.Get("/", d.admin.ListBatches)
			br.Post("/", d.admin.GenerateBatch)
			br.Get("/active", d.admin.ActiveBatch)
			br.Post("/{id}/activate", d.admin.ActivateBatch)
			br.Post("/{id}/deactivate", d.admin.DeactivateBatch)
			br.Get("/{id}/progress", d.admin.BatchProgress)
			br.Get("/{id}/slots", d.admin.ListSlots)
		})
	})

	return r
}
