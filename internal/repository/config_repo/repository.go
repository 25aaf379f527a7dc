package config_repo

import (
	"context"
	"errors"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table                 = "economic_config"
	colID                 = "id"
	colVersion            = "version"
	colPlayerShare        = "player_share_percentage"
	colPlatformShare      = "platform_share_percentage"
	colJackpotShare       = "jackpot_share_percentage"
	colBaseReturnRate     = "base_return_rate"
	colMaxWinMultiplier   = "max_win_multiplier"
	colJackpotTriggerRate = "jackpot_trigger_rate"
	colCreatedAt          = "created_at"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repo struct {
	dbc *pgxpool.Pool
}

func NewEconomicConfigRepository(dbc *pgxpool.Pool) repository.EconomicConfigRepository {
	return &repo{
		dbc: dbc,
	}
}

func (r *repo) conn(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc)
}

// GetConfig - возвращает последнюю версию экономической конфигурации
func (r *repo) GetConfig(ctx context.Context) (*model.EconomicConfig, error) {
	query := psql.Select(colID, colVersion, colPlayerShare, colPlatformShare, colJackpotShare,
		colBaseReturnRate, colMaxWinMultiplier, colJackpotTriggerRate, colCreatedAt).
		From(table).
		OrderBy(colVersion + " DESC").
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var cfg model.EconomicConfig
	err = r.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(
		&cfg.ID, &cfg.Version, &cfg.PlayerSharePct, &cfg.PlatformSharePct, &cfg.JackpotSharePct,
		&cfg.BaseReturnRate, &cfg.MaxWinMultiplier, &cfg.JackpotTriggerRate, &cfg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	return &cfg, nil
}

// CreateConfig - сохраняет новую версию конфигурации. Старые версии не трогаются
func (r *repo) CreateConfig(ctx context.Context, cfg *model.EconomicConfig) (int, error) {
	query := psql.Insert(table).
		Columns(colVersion, colPlayerShare, colPlatformShare, colJackpotShare,
			colBaseReturnRate, colMaxWinMultiplier, colJackpotTriggerRate).
		Values(
			sq.Expr("(SELECT COALESCE(MAX("+colVersion+"), 0) + 1 FROM "+table+")"),
			cfg.PlayerSharePct, cfg.PlatformSharePct, cfg.JackpotSharePct,
			cfg.BaseReturnRate, cfg.MaxWinMultiplier, cfg.JackpotTriggerRate,
		).
		Suffix("RETURNING " + colID + ", " + colVersion + ", " + colCreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	err = r.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(&cfg.ID, &cfg.Version, &cfg.CreatedAt)
	if err != nil {
		return 0, err
	}

	return cfg.Version, nil
}
