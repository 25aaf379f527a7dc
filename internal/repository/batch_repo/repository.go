package batch_repo

import (
	"context"
	"errors"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table                        = "game_batches"
	colID                        = "id"
	colName                      = "batch_name"
	colConfigVersion             = "config_version"
	colTotalGames                = "total_games"
	colAverageBet                = "average_bet"
	colTotalInvestment           = "total_investment"
	colPlayerPayoutTarget        = "player_payout_target"
	colPlatformRevenueTarget     = "platform_revenue_target"
	colJackpotContributionTarget = "jackpot_contribution_target"
	colActualPlayerPayout        = "actual_player_payout"
	colActualPlatformRevenue     = "actual_platform_revenue"
	colActualJackpotContribution = "actual_jackpot_contribution"
	colGamesPlayed               = "games_played"
	colIsActive                  = "is_active"
	colCreatedAt                 = "created_at"

	// ключ advisory-блокировки для переключения активной пачки
	activationLockKey = 7_340_001
)

var (
	psql    = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	columns = []string{
		colID, colName, colConfigVersion, colTotalGames, colAverageBet, colTotalInvestment,
		colPlayerPayoutTarget, colPlatformRevenueTarget, colJackpotContributionTarget,
		colActualPlayerPayout, colActualPlatformRevenue, colActualJackpotContribution,
		colGamesPlayed, colIsActive, colCreatedAt,
	}
)

type repo struct {
	dbc *pgxpool.Pool
}

func NewBatchRepository(dbc *pgxpool.Pool) repository.BatchRepository {
	return &repo{
		dbc: dbc,
	}
}

func (r *repo) conn(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc)
}

func scanBatch(row pgx.Row) (*model.GameBatch, error) {
	var b model.GameBatch
	err := row.Scan(
		&b.ID, &b.Name, &b.ConfigVersion, &b.TotalGames, &b.AverageBet, &b.TotalInvestment,
		&b.PlayerPayoutTarget, &b.PlatformRevenueTarget, &b.JackpotContributionTarget,
		&b.ActualPlayerPayout, &b.ActualPlatformRevenue, &b.ActualJackpotContribution,
		&b.GamesPlayed, &b.IsActive, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBatch - создаёт запись пачки. Пачка создаётся неактивной
func (r *repo) CreateBatch(ctx context.Context, b *model.GameBatch) error {
	query := psql.Insert(table).
		Columns(colID, colName, colConfigVersion, colTotalGames, colAverageBet, colTotalInvestment,
			colPlayerPayoutTarget, colPlatformRevenueTarget, colJackpotContributionTarget, colIsActive).
		Values(b.ID, b.Name, b.ConfigVersion, b.TotalGames, b.AverageBet, b.TotalInvestment,
			b.PlayerPayoutTarget, b.PlatformRevenueTarget, b.JackpotContributionTarget, false).
		Suffix("RETURNING " + colCreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(&b.CreatedAt)
}

// GetBatch - возвращает пачку по ID
func (r *repo) GetBatch(ctx context.Context, id uuid.UUID) (*model.GameBatch, error) {
	query := psql.Select(columns...).
		From(table).
		Where(sq.Eq{colID: id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	b, err := scanBatch(r.conn(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetActiveBatch - возвращает активную пачку
func (r *repo) GetActiveBatch(ctx context.Context) (*model.GameBatch, error) {
	query := psql.Select(columns...).
		From(table).
		Where(sq.Eq{colIsActive: true})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	b, err := scanBatch(r.conn(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoActiveBatch
		}
		return nil, err
	}
	return b, nil
}

// ListBatches - все пачки, новые первыми
func (r *repo) ListBatches(ctx context.Context) ([]model.GameBatch, error) {
	query := psql.Select(columns...).
		From(table).
		OrderBy(colCreatedAt + " DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]model.GameBatch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}

	return batches, rows.Err()
}

// ActivateBatch - снимает активность со всех пачек и активирует указанную.
// Должен вызываться внутри транзакции: advisory-блокировка сериализует конкурирующие активации
func (r *repo) ActivateBatch(ctx context.Context, id uuid.UUID) error {
	conn := r.conn(ctx)

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", activationLockKey); err != nil {
		return err
	}

	// Проверяем, что пачка существует, до того как что-то деактивировать
	existsQuery := psql.Select("1").
		From(table).
		Where(sq.Eq{colID: id}).
		Suffix("FOR UPDATE")

	sqlStr, args, err := existsQuery.ToSql()
	if err != nil {
		return err
	}

	var one int
	if err = conn.QueryRow(ctx, sqlStr, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		return err
	}

	deactivate := psql.Update(table).
		Set(colIsActive, false).
		Where(sq.And{sq.Eq{colIsActive: true}, sq.NotEq{colID: id}})

	sqlStr, args, err = deactivate.ToSql()
	if err != nil {
		return err
	}
	if _, err = conn.Exec(ctx, sqlStr, args...); err != nil {
		return err
	}

	activate := psql.Update(table).
		Set(colIsActive, true).
		Where(sq.Eq{colID: id})

	sqlStr, args, err = activate.ToSql()
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, sqlStr, args...)
	return err
}

// DeactivateBatch - снимает активность с пачки
func (r *repo) DeactivateBatch(ctx context.Context, id uuid.UUID) error {
	query := psql.Update(table).
		Set(colIsActive, false).
		Where(sq.Eq{colID: id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	res, err := r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// AddBatchProgress - атомарный инкремент агрегатов пачки
func (r *repo) AddBatchProgress(ctx context.Context, id uuid.UUID, d model.BatchProgress) error {
	query := psql.Update(table).
		Set(colGamesPlayed, sq.Expr(colGamesPlayed+" + ?", d.GamesPlayed)).
		Set(colActualPlayerPayout, sq.Expr(colActualPlayerPayout+" + ?", d.PlayerPayout)).
		Set(colActualPlatformRevenue, sq.Expr(colActualPlatformRevenue+" + ?", d.PlatformRevenue)).
		Set(colActualJackpotContribution, sq.Expr(colActualJackpotContribution+" + ?", d.JackpotContribution)).
		Where(sq.Eq{colID: id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	res, err := r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
