package session_repo

import (
	"context"
	"errors"
	"time"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	table          = "game_sessions"
	colID          = "id"
	colUserID      = "user_id"
	colSlotID      = "slot_id"
	colBetAmount   = "bet_amount"
	colStatus      = "status"
	colScore       = "score"
	colPayout      = "payout"
	colStartedAt   = "started_at"
	colCompletedAt = "completed_at"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repo struct {
	dbc *pgxpool.Pool
}

func NewSessionRepository(dbc *pgxpool.Pool) repository.SessionRepository {
	return &repo{
		dbc: dbc,
	}
}

func (r *repo) conn(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc)
}

// CreateSession - создает игровую сессию в БД
func (r *repo) CreateSession(ctx context.Context, s *model.GameSession) error {
	// Формируем запрос
	query := psql.Insert(table).
		Columns(colID, colUserID, colSlotID, colBetAmount, colStatus, colStartedAt).
		Values(s.ID, s.UserID, s.SlotID, s.BetAmount, string(s.Status), s.StartedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}

	return nil
}

// GetSession - сессия по ID
func (r *repo) GetSession(ctx context.Context, id uuid.UUID) (*model.GameSession, error) {
	// Формируем запрос
	query := psql.Select(colID, colUserID, colSlotID, colBetAmount, colStatus, colScore,
		colPayout, colStartedAt, colCompletedAt).
		From(table).
		Where(sq.Eq{colID: id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var (
		s      model.GameSession
		status string
	)
	err = r.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(
		&s.ID, &s.UserID, &s.SlotID, &s.BetAmount, &status, &s.Score,
		&s.Payout, &s.StartedAt, &s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	s.Status = model.SessionStatus(status)
	return &s, nil
}

// CompleteSession - закрывает активную сессию.
// false, если сессия уже была завершена
func (r *repo) CompleteSession(ctx context.Context, id uuid.UUID, score int64, payout decimal.Decimal, at time.Time) (bool, error) {
	// Формируем запрос
	query := psql.Update(table).
		Set(colStatus, string(model.SessionCompleted)).
		Set(colScore, score).
		Set(colPayout, payout).
		Set(colCompletedAt, at).
		Where(sq.Eq{colID: id, colStatus: string(model.SessionActive)})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}

	return res.RowsAffected() == 1, nil
}
