package slot_repo

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
	table               = "pre_generated_games"
	colID               = "id"
	colBatchID          = "batch_id"
	colGameIndex        = "game_index"
	colTier             = "tier"
	colBetAmount        = "bet_amount"
	colMaxScore         = "max_achievable_score"
	colResultType       = "result_type"
	colWinMultiplier    = "win_multiplier"
	colExpectedPayout   = "expected_payout"
	colSkillRequirement = "skill_requirement"
	colSessionID        = "session_id"
	colClaimedAt        = "claimed_at"
	colIsPlayed         = "is_played"
	colPlayedAt         = "played_at"
	colActualScore      = "actual_score"
	colActualPayout     = "actual_payout"

	// 12 колонок на строку, держимся далеко от лимита в 65535 параметров
	insertChunkSize = 1000
)

var (
	psql    = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	columns = []string{
		colID, colBatchID, colGameIndex, colTier, colBetAmount, colMaxScore, colResultType,
		colWinMultiplier, colExpectedPayout, colSkillRequirement, colSessionID, colClaimedAt,
		colIsPlayed, colPlayedAt, colActualScore, colActualPayout,
	}
	// свободный слот: не сыгран и не зарезервирован
	available = sq.And{sq.Eq{colIsPlayed: false}, sq.Eq{colSessionID: nil}}
)

type repo struct {
	dbc *pgxpool.Pool
}

func NewSlotRepository(dbc *pgxpool.Pool) repository.SlotRepository {
	return &repo{
		dbc: dbc,
	}
}

func (r *repo) conn(ctx context.Context) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, r.dbc)
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var (
		s          model.Slot
		tier       int16
		resultType string
		skill      int16
	)
	err := row.Scan(
		&s.ID, &s.BatchID, &s.GameIndex, &tier, &s.BetAmount, &s.MaxAchievableScore, &resultType,
		&s.WinMultiplier, &s.ExpectedPayout, &skill, &s.SessionID, &s.ClaimedAt,
		&s.IsPlayed, &s.PlayedAt, &s.ActualScore, &s.ActualPayout,
	)
	if err != nil {
		return nil, err
	}
	s.Tier = model.Tier(tier)
	s.ResultType = model.ResultType(resultType)
	s.SkillRequirement = int(skill)
	return &s, nil
}

// InsertSlots - массовая вставка слотов пачками по insertChunkSize строк
func (r *repo) InsertSlots(ctx context.Context, slots []model.Slot) error {
	conn := r.conn(ctx)

	for start := 0; start < len(slots); start += insertChunkSize {
		end := min(start+insertChunkSize, len(slots))

		query := psql.Insert(table).
			Columns(colID, colBatchID, colGameIndex, colTier, colBetAmount, colMaxScore, colResultType,
				colWinMultiplier, colExpectedPayout, colSkillRequirement, colIsPlayed)

		for _, s := range slots[start:end] {
			query = query.Values(s.ID, s.BatchID, s.GameIndex, int16(s.Tier), s.BetAmount,
				s.MaxAchievableScore, string(s.ResultType), s.WinMultiplier, s.ExpectedPayout,
				int16(s.SkillRequirement), false)
		}

		sqlStr, args, err := query.ToSql()
		if err != nil {
			return err
		}

		if _, err = conn.Exec(ctx, sqlStr, args...); err != nil {
			return err
		}
	}

	return nil
}

// GetSlot - слот по ID
func (r *repo) GetSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := psql.Select(columns...).
		From(table).
		Where(sq.Eq{colID: id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanSlot(r.conn(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// FindAvailableSlot - первый по game_index свободный слот в окне фильтра
func (r *repo) FindAvailableSlot(ctx context.Context, f model.SlotFilter) (*model.Slot, error) {
	where := sq.And{sq.Eq{colBatchID: f.BatchID}, available}
	if f.MinBet.Valid {
		where = append(where, sq.GtOrEq{colBetAmount: f.MinBet.Decimal})
	}
	if f.MaxBet.Valid {
		where = append(where, sq.LtOrEq{colBetAmount: f.MaxBet.Decimal})
	}
	if f.MinSkill > 0 {
		where = append(where, sq.GtOrEq{colSkillRequirement: f.MinSkill})
	}
	if f.MaxSkill > 0 {
		where = append(where, sq.LtOrEq{colSkillRequirement: f.MaxSkill})
	}

	query := psql.Select(columns...).
		From(table).
		Where(where).
		OrderBy(colGameIndex).
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanSlot(r.conn(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// ClaimSlot - условное обновление: выигрывает только первый резерв свободного слота
func (r *repo) ClaimSlot(ctx context.Context, slotID, sessionID uuid.UUID, at time.Time) (bool, error) {
	query := psql.Update(table).
		Set(colSessionID, sessionID).
		Set(colClaimedAt, at).
		Where(sq.And{sq.Eq{colID: slotID}, available})

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

// MarkSlotPlayed - переводит is_played из false в true ровно один раз
func (r *repo) MarkSlotPlayed(ctx context.Context, p model.PlayedSlot) (bool, error) {
	query := psql.Update(table).
		Set(colIsPlayed, true).
		Set(colPlayedAt, p.PlayedAt).
		Set(colActualScore, p.ActualScore).
		Set(colActualPayout, p.ActualPayout).
		Where(sq.Eq{colID: p.SlotID, colIsPlayed: false})

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

// ListSlots - слоты пачки для предпросмотра
func (r *repo) ListSlots(ctx context.Context, q model.SlotQuery) ([]model.Slot, error) {
	where := sq.And{sq.Eq{colBatchID: q.BatchID}}
	switch q.Status {
	case model.SlotStatusPlayed:
		where = append(where, sq.Eq{colIsPlayed: true})
	case model.SlotStatusUnplayed:
		where = append(where, sq.Eq{colIsPlayed: false})
	}

	query := psql.Select(columns...).
		From(table).
		Where(where).
		OrderBy(orderBy(q.Sort), colGameIndex)

	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		query = query.Offset(uint64(q.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]model.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}

	return slots, rows.Err()
}

func orderBy(s model.SlotSort) string {
	switch s {
	case model.SortTargetScore:
		return colMaxScore + " DESC"
	case model.SortMaxPayout:
		return colExpectedPayout + " DESC"
	case model.SortPlayedAt:
		return colPlayedAt + " DESC NULLS LAST"
	default:
		return colGameIndex + " ASC"
	}
}

// CountSlots - сводка по типам результата внутри пачки
func (r *repo) CountSlots(ctx context.Context, batchID uuid.UUID) ([]model.ResultCount, error) {
	query := psql.Select(
		colResultType,
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE "+colIsPlayed+")",
		"COALESCE(SUM("+colExpectedPayout+"), 0)",
		"COALESCE(SUM("+colActualPayout+"), 0)",
	).
		From(table).
		Where(sq.Eq{colBatchID: batchID}).
		GroupBy(colResultType).
		OrderBy(colResultType)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]model.ResultCount, 0, 3)
	for rows.Next() {
		var (
			c          model.ResultCount
			resultType string
			expected   decimal.Decimal
			paid       decimal.Decimal
		)
		if err := rows.Scan(&resultType, &c.Total, &c.Played, &expected, &paid); err != nil {
			return nil, err
		}
		c.ResultType = model.ResultType(resultType)
		c.Expected = expected
		c.Paid = paid
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
