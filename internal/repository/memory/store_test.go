package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBatch(t *testing.T, s *Store, n int) *model.GameBatch {
	t.Helper()
	ctx := context.Background()

	b := &model.GameBatch{ID: uuid.New(), Name: "mem", TotalGames: n}
	require.NoError(t, s.CreateBatch(ctx, b))

	slots := make([]model.Slot, n)
	for i := range slots {
		slots[i] = model.Slot{
			ID:                 uuid.New(),
			BatchID:            b.ID,
			GameIndex:          n - 1 - i,
			BetAmount:          decimal.NewFromInt(int64(10 + i)),
			ExpectedPayout:     decimal.NewFromInt(int64(i)),
			MaxAchievableScore: int64(100 * i),
			ResultType:         model.ResultWin,
			SkillRequirement:   1 + i%10,
		}
	}
	require.NoError(t, s.InsertSlots(ctx, slots))
	return b
}

func TestTxManager_RollbackOnError(t *testing.T) {
	t.Parallel()
	s := NewStore(clockwork.NewFakeClock())
	ctx := context.Background()
	b := seedBatch(t, s, 3)

	boom := errors.New("boom")
	err := s.TxManager().Do(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.AddJackpotContribution(txCtx, decimal.NewFromInt(50)))
		require.NoError(t, s.ActivateBatch(txCtx, b.ID))
		require.NoError(t, s.Credit(txCtx, model.WalletTransaction{UserID: 1, Amount: decimal.NewFromInt(5)}))
		_, err := s.CreateConfig(txCtx, &model.EconomicConfig{})
		require.NoError(t, err)

		// вложенная транзакция откатывается вместе с внешней
		return s.TxManager().Do(txCtx, func(inner context.Context) error {
			ok, err := s.MarkSlotPlayed(inner, model.PlayedSlot{SlotID: s.Slots(b.ID)[0].ID, PlayedAt: time.Now()})
			require.NoError(t, err)
			require.True(t, ok)
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	pool, err := s.GetJackpot(ctx)
	require.NoError(t, err)
	assert.True(t, pool.CurrentAmount.IsZero())

	_, err = s.GetActiveBatch(ctx)
	require.ErrorIs(t, err, model.ErrNoActiveBatch)

	balance, err := s.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	assert.Empty(t, s.Transactions())

	_, err = s.GetConfig(ctx)
	require.ErrorIs(t, err, model.ErrNotFound)

	for _, sl := range s.Slots(b.ID) {
		assert.False(t, sl.IsPlayed)
	}
}

func TestTxManager_RollbackInsertedBatch(t *testing.T) {
	t.Parallel()
	s := NewStore(clockwork.NewFakeClock())
	ctx := context.Background()

	id := uuid.New()
	err := s.TxManager().Do(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.CreateBatch(txCtx, &model.GameBatch{ID: id}))
		require.NoError(t, s.InsertSlots(txCtx, []model.Slot{{ID: uuid.New(), BatchID: id}}))
		return errors.New("abort")
	})
	require.Error(t, err)

	_, err = s.GetBatch(ctx, id)
	require.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, s.Slots(id))
}

func TestSlots_OrderedByGameIndex(t *testing.T) {
	t.Parallel()
	s := NewStore(clockwork.NewFakeClock())
	b := seedBatch(t, s, 5)

	for i, sl := range s.Slots(b.ID) {
		assert.Equal(t, i, sl.GameIndex)
	}
}

func TestClaimAndPlay(t *testing.T) {
	t.Parallel()
	s := NewStore(clockwork.NewFakeClock())
	ctx := context.Background()
	b := seedBatch(t, s, 2)

	first, err := s.FindAvailableSlot(ctx, model.SlotFilter{BatchID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, first.GameIndex)

	ok, err := s.ClaimSlot(ctx, first.ID, uuid.New(), time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.ClaimSlot(ctx, first.ID, uuid.New(), time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "second claim must fail")

	next, err := s.FindAvailableSlot(ctx, model.SlotFilter{BatchID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, next.GameIndex)

	played := model.PlayedSlot{SlotID: first.ID, ActualScore: 10, ActualPayout: decimal.NewFromInt(1), PlayedAt: time.Now()}
	ok, err = s.MarkSlotPlayed(ctx, played)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.MarkSlotPlayed(ctx, played)
	require.NoError(t, err)
	assert.False(t, ok)

	counts, err := s.CountSlots(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Total)
	assert.Equal(t, 1, counts[0].Played)
	assert.True(t, counts[0].Paid.Equal(decimal.NewFromInt(1)))
}

func TestFindAvailableSlot_Filters(t *testing.T) {
	t.Parallel()
	s := NewStore(clockwork.NewFakeClock())
	ctx := context.Background()
	b := seedBatch(t, s, 10)

	// bet 10+i, skill 1+i%10, game_index 9-i
	sl, err := s.FindAvailableSlot(ctx, model.SlotFilter{
		BatchID:  b.ID,
		MinBet:   decimal.NewNullDecimal(decimal.NewFromInt(12)),
		MaxBet:   decimal.NewNullDecimal(decimal.NewFromInt(14)),
		MinSkill: 4,
		MaxSkill: 4,
	})
	require.NoError(t, err)
	assert.True(t, sl.BetAmount.Equal(decimal.NewFromInt(13)))

	_, err = s.FindAvailableSlot(ctx, model.SlotFilter{
		BatchID: b.ID,
		MinBet:  decimal.NewNullDecimal(decimal.NewFromInt(100)),
	})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestListSlots_SortAndPage(t *testing.T) {
	t.Parallel()
	s := NewStore(clockwork.NewFakeClock())
	ctx := context.Background()
	b := seedBatch(t, s, 6)

	byScore, err := s.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Sort: model.SortTargetScore})
	require.NoError(t, err)
	for i := 1; i < len(byScore); i++ {
		assert.GreaterOrEqual(t, byScore[i-1].MaxAchievableScore, byScore[i].MaxAchievableScore)
	}

	page, err := s.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Sort: model.SortGameIndex, Offset: 4, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 4, page[0].GameIndex)

	empty, err := s.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDebit(t *testing.T) {
	t.Parallel()
	s := NewStore(clockwork.NewFakeClock())
	ctx := context.Background()

	err := s.Debit(ctx, model.WalletTransaction{UserID: 3, Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, model.ErrInsufficientBalance)

	s.SetBalance(3, decimal.NewFromInt(10))
	require.NoError(t, s.Debit(ctx, model.WalletTransaction{UserID: 3, Amount: decimal.NewFromInt(10)}))

	balance, err := s.GetBalance(ctx, 3)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
