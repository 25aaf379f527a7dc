package jackpot_repo

import (
	"context"
	"errors"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	table                 = "jackpot_pool"
	colID                 = "id"
	colCurrentAmount      = "current_amount"
	colTotalContributions = "total_contributions"
	colTotalPayouts       = "total_payouts"
	colLastWinnerID       = "last_winner_id"
	colLastWinAmount      = "last_win_amount"
	colLastWinDate        = "last_win_date"
	colUpdatedAt          = "updated_at"

	// пул единственный, строка создаётся миграцией
	poolID = 1
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repo struct {
	dbc *pgxpool.Pool
}

func NewJackpotRepository(dbc *pgxpool.Pool) repository.JackpotRepository {
	return &repo{
		dbc: dbc,
	}
}

func (r *repo) conn(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc)
}

// GetJackpot - текущее состояние пула
func (r *repo) GetJackpot(ctx context.Context) (*model.JackpotPool, error) {
	query := psql.Select(colID, colCurrentAmount, colTotalContributions, colTotalPayouts,
		colLastWinnerID, colLastWinAmount, colLastWinDate, colUpdatedAt).
		From(table).
		Where(sq.Eq{colID: poolID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p model.JackpotPool
	err = r.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(
		&p.ID, &p.CurrentAmount, &p.TotalContributions, &p.TotalPayouts,
		&p.LastWinnerID, &p.LastWinAmount, &p.LastWinDate, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	return &p, nil
}

// AddJackpotContribution - пополняет пул и счётчик взносов
func (r *repo) AddJackpotContribution(ctx context.Context, amount decimal.Decimal) error {
	query := psql.Update(table).
		Set(colCurrentAmount, sq.Expr(colCurrentAmount+" + ?", amount)).
		Set(colTotalContributions, sq.Expr(colTotalContributions+" + ?", amount)).
		Set(colUpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{colID: poolID})

	return r.exec(ctx, query)
}

// PayJackpot - выплата: пул обнуляется, победитель запоминается
func (r *repo) PayJackpot(ctx context.Context, win model.JackpotWin) error {
	query := psql.Update(table).
		Set(colCurrentAmount, 0).
		Set(colTotalPayouts, sq.Expr(colTotalPayouts+" + ?", win.Amount)).
		Set(colLastWinnerID, win.WinnerID).
		Set(colLastWinAmount, win.Amount).
		Set(colLastWinDate, win.WonAt).
		Set(colUpdatedAt, win.WonAt).
		Where(sq.Eq{colID: poolID})

	return r.exec(ctx, query)
}

func (r *repo) exec(ctx context.Context, query sq.UpdateBuilder) error {
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
