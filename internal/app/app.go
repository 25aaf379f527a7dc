package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tetrabet_backend/internal/config"
	"tetrabet_backend/internal/migrations"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	EnvPath    string
	ConfigPath string
	// Migrate накатывает миграции даже без PG_RUN_MIGRATIONS
	Migrate bool
}

type App struct {
	ServiceProvider *ServiceProvider
	log             *slog.Logger
	opts            Options
}

func NewApp(log *slog.Logger, opts Options) *App {
	return &App{log: log, opts: opts}
}

func (s *App) initServiceProvider() {
	s.ServiceProvider = newServiceProvider(s.log, s.opts.ConfigPath)
}

// Run - поднимает HTTP-сервер и ждёт отмены ctx, после чего корректно останавливается
func (s *App) Run(ctx context.Context) error {
	if err := config.Load(s.opts.EnvPath); err != nil {
		s.log.Warn("env file not loaded, using process environment", "path", s.opts.EnvPath, "error", err)
	}
	s.initServiceProvider()

	sp := s.ServiceProvider
	if s.opts.Migrate || sp.PgConfig().RunMigrations() {
		if err := migrations.Up(s.log, sp.PgConfig().DSN()); err != nil {
			return err
		}
	}
	defer sp.DBClient(ctx).Close()

	// первая версия экономики появляется до первого запроса
	if _, err := sp.EconomicsService(ctx).GetConfig(ctx); err != nil {
		return fmt.Errorf("failed to load economic config: %w", err)
	}

	srv := &http.Server{
		Addr:              sp.HTTPCfg().Address(),
		Handler:           sp.Router(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
