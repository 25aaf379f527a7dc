package env

import (
	"os"
	"path/filepath"
	"testing"

	"tetrabet_backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngineConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := ParseEngineConfig(nil)
	require.NoError(t, err)

	econ := cfg.DefaultEconomics()
	assert.True(t, econ.PlayerSharePct.Equal(decimal.NewFromInt(70)))
	assert.True(t, econ.PlatformSharePct.Equal(decimal.NewFromInt(20)))
	assert.True(t, econ.JackpotSharePct.Equal(decimal.NewFromInt(10)))
	assert.True(t, econ.BaseReturnRate.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, 15.0, econ.MaxWinMultiplier)

	assert.Equal(t, 1_000_000, cfg.MaxBatchGames())
	assert.Equal(t, 5, cfg.ClaimAttempts())
	assert.Equal(t, int64(20000), cfg.Demo().ReferenceScore)
	assert.True(t, cfg.Demo().Multiplier.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, cfg.ShareBands().Player.Contains(decimal.NewFromInt(70)))
}

func TestParseEngineConfig_PartialOverride(t *testing.T) {
	t.Parallel()

	cfg, err := ParseEngineConfig([]byte(`
economics:
  player_share_pct: 75
  platform_share_pct: 15
limits:
  claim_attempts: 3
`))
	require.NoError(t, err)

	econ := cfg.DefaultEconomics()
	assert.True(t, econ.PlayerSharePct.Equal(decimal.NewFromInt(75)))
	assert.True(t, econ.PlatformSharePct.Equal(decimal.NewFromInt(15)))
	assert.True(t, econ.JackpotSharePct.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 3, cfg.ClaimAttempts())
	assert.Equal(t, 1_000_000, cfg.MaxBatchGames())
}

func TestParseEngineConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"shares do not sum to 100", "economics:\n  player_share_pct: 80\n"},
		{"player share outside band", "economics:\n  player_share_pct: 95\n  platform_share_pct: 5\n  jackpot_share_pct: 0\n"},
		{"zero base rate", "economics:\n  base_return_rate: 0\n"},
		{"low max multiplier", "economics:\n  max_win_multiplier: 5\n"},
		{"inverted band", "share_bands:\n  jackpot: {min: 15, max: 5}\n"},
		{"zero claim attempts", "limits:\n  claim_attempts: 0\n"},
		{"malformed yaml", "economics: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEngineConfig([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestParseEngineConfig_InvalidEconomicsIsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := ParseEngineConfig([]byte("economics:\n  player_share_pct: 80\n"))
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestNewEngineConfigFromYAML_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewEngineConfigFromYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.ClaimAttempts())
}

func TestNewEngineConfigFromYAML_ReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  per_minute: 30\n  burst: 5\n"), 0o600))

	cfg, err := NewEngineConfigFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RateLimit().PerMinute)
	assert.Equal(t, 5, cfg.RateLimit().Burst)
}
