package batch

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository"
	"tetrabet_backend/internal/repository/memory"
	"tetrabet_backend/internal/service"
	"tetrabet_backend/internal/service/economics"
	"tetrabet_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var bands = model.ShareBands{
	Player:   model.Band{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(90)},
	Platform: model.Band{Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(40)},
	Jackpot:  model.Band{Min: decimal.Zero, Max: decimal.NewFromInt(20)},
}

type fixture struct {
	store *memory.Store
	serv  service.BatchService
}

func newFixture(t *testing.T, slotRepo repository.SlotRepository) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClock()
	store := memory.NewStore(clock)
	tx := store.TxManager()
	log := logger.Discard()

	if slotRepo == nil {
		slotRepo = store
	}

	var seed uint64
	econ := economics.NewEconomicsService(store, defaultConfig(), bands, tx, log)
	serv := NewBatchService(econ, store, slotRepo, store, tx, func() rand.Source {
		seed++
		return rand.NewPCG(seed, 99)
	}, 10_000, clock, log)

	return &fixture{store: store, serv: serv}
}

func (f *fixture) generate(t *testing.T, name string, games int) *model.GameBatch {
	t.Helper()
	b, err := f.serv.GenerateBatch(context.Background(), model.GenerateBatch{
		Name:       name,
		TotalGames: games,
		AverageBet: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return b
}

func TestGenerateBatch_PersistsBatchSlotsAndFundsJackpot(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	b := f.generate(t, "first", 200)

	stored, err := f.serv.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, b.ID, stored[0].ID)
	assert.False(t, stored[0].IsActive)

	assert.Len(t, f.store.Slots(b.ID), 200)

	pool, err := f.store.GetJackpot(ctx)
	require.NoError(t, err)
	assert.True(t, pool.CurrentAmount.Equal(decimal.NewFromInt(2000)), pool.CurrentAmount.String())
	assert.True(t, pool.TotalContributions.Equal(decimal.NewFromInt(2000)))
}

func TestGenerateBatch_InvalidInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	for name, req := range map[string]model.GenerateBatch{
		"no name":      {Name: "  ", TotalGames: 10, AverageBet: decimal.NewFromInt(1)},
		"zero games":   {Name: "x", TotalGames: 0, AverageBet: decimal.NewFromInt(1)},
		"too many":     {Name: "x", TotalGames: 10_001, AverageBet: decimal.NewFromInt(1)},
		"negative bet": {Name: "x", TotalGames: 10, AverageBet: decimal.NewFromInt(-3)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.serv.GenerateBatch(ctx, req)
			require.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	batches, err := f.serv.ListBatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

// failingSlots отказывает на вставке слотов
type failingSlots struct {
	repository.SlotRepository
}

func (failingSlots) InsertSlots(context.Context, []model.Slot) error {
	return errors.New("connection reset")
}

func TestGenerateBatch_FailedInsertLeavesNothing(t *testing.T) {
	t.Parallel()
	store := memory.NewStore(clockwork.NewFakeClock())
	f := newFixture(t, failingSlots{SlotRepository: store})
	ctx := context.Background()

	_, err := f.serv.GenerateBatch(ctx, model.GenerateBatch{Name: "broken", TotalGames: 50, AverageBet: decimal.NewFromInt(10)})
	require.ErrorIs(t, err, model.ErrPersistence)

	batches, err := f.serv.ListBatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, batches)

	pool, err := f.store.GetJackpot(ctx)
	require.NoError(t, err)
	assert.True(t, pool.CurrentAmount.IsZero())
}

func TestActivateBatch_SingleActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.serv.GetActiveBatch(ctx)
	require.ErrorIs(t, err, model.ErrNoActiveBatch)

	a := f.generate(t, "a", 10)
	b := f.generate(t, "b", 10)

	require.NoError(t, f.serv.ActivateBatch(ctx, a.ID))
	active, err := f.serv.GetActiveBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active.ID)

	require.NoError(t, f.serv.ActivateBatch(ctx, b.ID))
	active, err = f.serv.GetActiveBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, active.ID)
	assertSingleActive(t, f.serv)

	// повторная активация ничего не ломает
	require.NoError(t, f.serv.ActivateBatch(ctx, b.ID))
	assertSingleActive(t, f.serv)

	require.NoError(t, f.serv.DeactivateBatch(ctx, b.ID))
	_, err = f.serv.GetActiveBatch(ctx)
	require.ErrorIs(t, err, model.ErrNoActiveBatch)
}

func TestActivateBatch_UnknownBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	a := f.generate(t, "a", 10)
	require.NoError(t, f.serv.ActivateBatch(ctx, a.ID))

	require.ErrorIs(t, f.serv.ActivateBatch(ctx, uuid.New()), model.ErrNotFound)
	require.ErrorIs(t, f.serv.DeactivateBatch(ctx, uuid.New()), model.ErrNotFound)

	// неудачная активация не снимает текущую пачку
	active, err := f.serv.GetActiveBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active.ID)
}

func TestActivateBatch_Concurrent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = f.generate(t, "concurrent", 5).ID
	}

	var g errgroup.Group
	for round := 0; round < 10; round++ {
		for _, id := range ids {
			g.Go(func() error {
				return f.serv.ActivateBatch(ctx, id)
			})
		}
	}
	require.NoError(t, g.Wait())

	assertSingleActive(t, f.serv)
}

func assertSingleActive(t *testing.T, serv service.BatchService) {
	t.Helper()
	batches, err := serv.ListBatches(context.Background())
	require.NoError(t, err)

	active := 0
	for _, b := range batches {
		if b.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestBatchProgress(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	b := f.generate(t, "progress", 100)

	report, err := f.serv.BatchProgress(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, report.Remaining)
	assert.Zero(t, report.PlayedPct)
	assert.Zero(t, report.PayoutPct)

	total := 0
	for _, c := range report.ByResult {
		total += c.Total
		assert.Zero(t, c.Played)
	}
	assert.Equal(t, 100, total)
	assert.True(t, report.PlannedWins.IsPositive())

	_, err = f.serv.BatchProgress(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestListSlots(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	b := f.generate(t, "preview", 50)

	slots, err := f.serv.ListSlots(ctx, model.SlotQuery{BatchID: b.ID})
	require.NoError(t, err)
	require.Len(t, slots, 50)
	for i, s := range slots {
		assert.Equal(t, i, s.GameIndex)
	}

	byPayout, err := f.serv.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Sort: model.SortMaxPayout, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byPayout, 10)
	for i := 1; i < len(byPayout); i++ {
		assert.True(t, byPayout[i-1].ExpectedPayout.GreaterThanOrEqual(byPayout[i].ExpectedPayout))
	}

	page, err := f.serv.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Len(t, page, 10)

	played, err := f.serv.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Status: model.SlotStatusPlayed})
	require.NoError(t, err)
	assert.Empty(t, played)

	_, err = f.serv.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Sort: "random"})
	require.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = f.serv.ListSlots(ctx, model.SlotQuery{BatchID: b.ID, Status: "pending"})
	require.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = f.serv.ListSlots(ctx, model.SlotQuery{BatchID: uuid.New()})
	require.ErrorIs(t, err, model.ErrNotFound)
}
