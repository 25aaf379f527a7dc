package wallet_repo

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
	table        = "wallets"
	colUserID    = "user_id"
	colBalance   = "balance"
	colUpdatedAt = "updated_at"

	txTable      = "wallet_transactions"
	colTxID      = "id"
	colTxType    = "type"
	colAmount    = "amount"
	colSlotID    = "slot_id"
	colSessionID = "session_id"
	colCreatedAt = "created_at"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repo struct {
	dbc *pgxpool.Pool
}

func NewWalletRepository(dbc *pgxpool.Pool) repository.WalletRepository {
	return &repo{
		dbc: dbc,
	}
}

func (r *repo) conn(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc)
}

// GetBalance - получение баланса пользователя по его ID.
// Пользователь без кошелька имеет нулевой баланс
func (r *repo) GetBalance(ctx context.Context, userID int) (decimal.Decimal, error) {
	// Формируем запрос
	query := psql.Select(colBalance).
		From(table).
		Where(sq.Eq{colUserID: userID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = r.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return balance, nil
}

// Debit - списывает ставку, только если баланса хватает
func (r *repo) Debit(ctx context.Context, tx model.WalletTransaction) error {
	// Формируем запрос
	query := psql.Update(table).
		Set(colBalance, sq.Expr(colBalance+" - ?", tx.Amount)).
		Set(colUpdatedAt, tx.CreatedAt).
		Where(sq.And{sq.Eq{colUserID: tx.UserID}, sq.GtOrEq{colBalance: tx.Amount}})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	res, err := r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return model.ErrInsufficientBalance
	}

	return r.insertTransaction(ctx, tx)
}

// Credit - зачисляет выигрыш, создавая кошелёк при необходимости
func (r *repo) Credit(ctx context.Context, tx model.WalletTransaction) error {
	// Формируем запрос
	query := psql.Insert(table).
		Columns(colUserID, colBalance, colUpdatedAt).
		Values(tx.UserID, tx.Amount, tx.CreatedAt).
		Suffix("ON CONFLICT ("+colUserID+") DO UPDATE SET "+
			colBalance+" = "+table+"."+colBalance+" + EXCLUDED."+colBalance+", "+
			colUpdatedAt+" = EXCLUDED."+colUpdatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err = r.conn(ctx).Exec(ctx, sqlStr, args...); err != nil {
		return err
	}

	return r.insertTransaction(ctx, tx)
}

func (r *repo) insertTransaction(ctx context.Context, tx model.WalletTransaction) error {
	query := psql.Insert(txTable).
		Columns(colTxID, colUserID, colTxType, colAmount, colSlotID, colSessionID, colCreatedAt).
		Values(tx.ID, tx.UserID, string(tx.Type), tx.Amount, tx.SlotID, tx.SessionID, tx.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn(ctx).Exec(ctx, sqlStr, args...)
	return err
}
