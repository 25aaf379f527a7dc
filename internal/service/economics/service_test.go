package economics

import (
	"context"
	"testing"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository/memory"
	"tetrabet_backend/internal/service"
	"tetrabet_backend/pkg/logger"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func newServ() (service.EconomicsService, *memory.Store) {
	store := memory.NewStore(clockwork.NewFakeClock())
	defaults := model.EconomicConfig{
		PlayerSharePct:     decimal.NewFromInt(70),
		PlatformSharePct:   decimal.NewFromInt(20),
		JackpotSharePct:    decimal.NewFromInt(10),
		BaseReturnRate:     decimal.RequireFromString("0.01"),
		MaxWinMultiplier:   15,
		JackpotTriggerRate: 0.001,
	}
	bands := model.ShareBands{
		Player:   model.Band{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(90)},
		Platform: model.Band{Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(40)},
		Jackpot:  model.Band{Min: decimal.Zero, Max: decimal.NewFromInt(20)},
	}
	return NewEconomicsService(store, defaults, bands, store.TxManager(), logger.Discard()), store
}

func TestGetConfig_SeedsDefaultsOnce(t *testing.T) {
	t.Parallel()
	serv, store := newServ()
	ctx := context.Background()

	cfg, err := serv.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	assert.True(t, cfg.PlayerSharePct.Equal(decimal.NewFromInt(70)))

	again, err := serv.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Version)

	stored, err := store.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
}

func TestUpdateConfig_CreatesNewVersion(t *testing.T) {
	t.Parallel()
	serv, _ := newServ()
	ctx := context.Background()

	mult := 20.0
	cfg, err := serv.UpdateConfig(ctx, model.EconomicConfigPatch{
		PlayerSharePct:   pct(75),
		PlatformSharePct: pct(15),
		MaxWinMultiplier: &mult,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)
	assert.True(t, cfg.PlayerSharePct.Equal(decimal.NewFromInt(75)))
	assert.True(t, cfg.PlatformSharePct.Equal(decimal.NewFromInt(15)))
	assert.True(t, cfg.JackpotSharePct.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 20.0, cfg.MaxWinMultiplier)

	current, err := serv.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)
}

func TestUpdateConfig_Rejected(t *testing.T) {
	t.Parallel()

	zero := decimal.Zero
	low := 5.0
	tests := []struct {
		name  string
		patch model.EconomicConfigPatch
	}{
		{"empty patch", model.EconomicConfigPatch{}},
		{"sum not 100", model.EconomicConfigPatch{PlayerSharePct: pct(80)}},
		{"player above band", model.EconomicConfigPatch{PlayerSharePct: pct(95), PlatformSharePct: pct(5), JackpotSharePct: pct(0)}},
		{"platform below band", model.EconomicConfigPatch{PlayerSharePct: pct(88), PlatformSharePct: pct(2)}},
		{"jackpot above band", model.EconomicConfigPatch{PlayerSharePct: pct(55), PlatformSharePct: pct(20), JackpotSharePct: pct(25)}},
		{"zero base rate", model.EconomicConfigPatch{BaseReturnRate: &zero}},
		{"low max multiplier", model.EconomicConfigPatch{MaxWinMultiplier: &low}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serv, _ := newServ()
			ctx := context.Background()

			_, err := serv.UpdateConfig(ctx, tt.patch)
			require.ErrorIs(t, err, model.ErrInvalidInput)

			cfg, err := serv.GetConfig(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, cfg.Version, "rejected update must not create a version")
		})
	}
}
