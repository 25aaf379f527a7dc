// Package pgtest поднимает PostgreSQL в testcontainers для интеграционных тестов репозиториев
package pgtest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"tetrabet_backend/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const image = "postgres:16-alpine"

type DB struct {
	log       *slog.Logger
	connStr   string
	container *tcpostgres.PostgresContainer
}

func (db *DB) ConnStr() string {
	return db.connStr
}

func (db *DB) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.container.Terminate(ctx); err != nil {
		db.log.Error("failed to terminate PostgreSQL container", "error", err)
	}
}

// NewDB запускает контейнер и накатывает миграции
func NewDB(ctx context.Context, log *slog.Logger) (*DB, error) {
	var (
		container *tcpostgres.PostgresContainer
		lastErr   error
	)
	for attempt := 1; attempt <= 3; attempt++ {
		var err error
		container, err = tcpostgres.Run(ctx,
			image,
			tcpostgres.WithDatabase("tetrabet"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			tcpostgres.BasicWaitStrategies(),
			tcpostgres.WithSQLDriver("pgx"),
		)
		if err == nil {
			break
		}
		lastErr = err
		if !isRetryable(err) || attempt == 3 {
			return nil, fmt.Errorf("failed to start PostgreSQL container: %w", lastErr)
		}
		time.Sleep(time.Duration(attempt) * 750 * time.Millisecond)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
	}

	if err := migrations.Up(log, connStr); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &DB{log: log, connStr: connStr, container: container}, nil
}

// NewPool - пул к чистой базе: все таблицы очищаются, джекпот обнуляется
func NewPool(t *testing.T, db *DB) *pgxpool.Pool {
	t.Helper()
	ctx := t.Context()

	pool, err := pgxpool.New(ctx, db.connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE wallet_transactions, wallets, game_sessions, pre_generated_games, game_batches, economic_config RESTART IDENTITY;
		UPDATE jackpot_pool SET current_amount = 0, total_contributions = 0, total_payouts = 0,
			last_winner_id = NULL, last_win_amount = NULL, last_win_date = NULL;
	`)
	require.NoError(t, err)

	return pool
}

func isRetryable(err error) bool {
	s := err.Error()
	return strings.Contains(s, "wait until ready") ||
		strings.Contains(s, "mapped port") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "context deadline exceeded")
}
