package batch

import (
	"math/rand/v2"
	"testing"

	"tetrabet_backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() model.EconomicConfig {
	return model.EconomicConfig{
		Version:            1,
		PlayerSharePct:     decimal.NewFromInt(70),
		PlatformSharePct:   decimal.NewFromInt(20),
		JackpotSharePct:    decimal.NewFromInt(10),
		BaseReturnRate:     decimal.RequireFromString("0.01"),
		MaxWinMultiplier:   15,
		JackpotTriggerRate: 0.001,
	}
}

func playerFunded(slots []model.Slot) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range slots {
		if s.ResultType != model.ResultJackpot {
			sum = sum.Add(s.ExpectedPayout)
		}
	}
	return sum
}

func TestGenerate_ConcreteScenario(t *testing.T) {
	t.Parallel()

	batch, slots, err := Generate(rand.NewPCG(1, 2), model.GenerateBatch{
		Name:       "scenario",
		TotalGames: 100,
		AverageBet: decimal.NewFromInt(1000),
	}, defaultConfig())
	require.NoError(t, err)

	assert.True(t, batch.TotalInvestment.Equal(decimal.NewFromInt(100_000)))
	assert.True(t, batch.PlayerPayoutTarget.Equal(decimal.NewFromInt(70_000)), batch.PlayerPayoutTarget.String())
	assert.True(t, batch.PlatformRevenueTarget.Equal(decimal.NewFromInt(20_000)))
	assert.True(t, batch.JackpotContributionTarget.Equal(decimal.NewFromInt(10_000)))
	assert.Equal(t, 1, batch.ConfigVersion)
	assert.False(t, batch.IsActive)

	require.Len(t, slots, 100)
	assert.True(t, playerFunded(slots).LessThanOrEqual(decimal.NewFromInt(70_000)))
}

func TestGenerate_BudgetBound(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 20; seed++ {
		batch, slots, err := Generate(rand.NewPCG(seed, seed+1), model.GenerateBatch{
			Name:       "budget",
			TotalGames: 500,
			AverageBet: decimal.RequireFromString("12.50"),
		}, defaultConfig())
		require.NoError(t, err)

		sum := playerFunded(slots)
		assert.Truef(t, sum.LessThanOrEqual(batch.PlayerPayoutTarget),
			"seed %d: planned %s exceeds target %s", seed, sum, batch.PlayerPayoutTarget)
	}
}

func TestGenerate_JackpotTriggerRateDoesNotShapePlan(t *testing.T) {
	t.Parallel()

	plan := func(rate float64) []model.Slot {
		cfg := defaultConfig()
		cfg.JackpotTriggerRate = rate
		_, slots, err := Generate(rand.NewPCG(11, 12), model.GenerateBatch{
			Name:       "trigger",
			TotalGames: 300,
			AverageBet: decimal.NewFromInt(10),
		}, cfg)
		require.NoError(t, err)
		return slots
	}

	low, high := plan(0), plan(1)
	require.Len(t, high, len(low))
	for i := range low {
		assert.Equal(t, low[i].Tier, high[i].Tier, "slot %d", i)
		assert.Equal(t, low[i].ResultType, high[i].ResultType, "slot %d", i)
		assert.True(t, low[i].ExpectedPayout.Equal(high[i].ExpectedPayout), "slot %d", i)
	}
}

func TestGenerate_TierDistribution(t *testing.T) {
	t.Parallel()

	const n = 10_000
	_, slots, err := Generate(rand.NewPCG(42, 7), model.GenerateBatch{
		Name:       "distribution",
		TotalGames: n,
		AverageBet: decimal.NewFromInt(10),
	}, defaultConfig())
	require.NoError(t, err)

	counts := make(map[model.Tier]int)
	for _, s := range slots {
		counts[s.Tier]++
	}

	for _, spec := range tiers {
		got := float64(counts[spec.tier]) / n
		assert.InDeltaf(t, spec.weight, got, 0.02, "tier %s: got %.4f", spec.tier, got)
	}
}

func TestGenerate_SlotShape(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	avg := decimal.NewFromInt(100)
	_, slots, err := Generate(rand.NewPCG(3, 4), model.GenerateBatch{
		Name:       "shape",
		TotalGames: 2000,
		AverageBet: avg,
	}, cfg)
	require.NoError(t, err)

	seen := make(map[int]bool, len(slots))
	for _, s := range slots {
		require.False(t, seen[s.GameIndex], "duplicate game_index %d", s.GameIndex)
		seen[s.GameIndex] = true

		assert.True(t, s.BetAmount.GreaterThanOrEqual(decimal.NewFromInt(80)), s.BetAmount.String())
		assert.True(t, s.BetAmount.LessThanOrEqual(decimal.NewFromInt(120)), s.BetAmount.String())
		assert.False(t, s.IsPlayed)

		spec := tiers[s.Tier]
		assert.GreaterOrEqual(t, s.SkillRequirement, spec.minSkill)
		assert.LessOrEqual(t, s.SkillRequirement, spec.maxSkill)

		switch s.ResultType {
		case model.ResultLoss:
			assert.False(t, s.WinMultiplier.Valid)
			assert.True(t, s.ExpectedPayout.IsZero())
			want := s.BetAmount.Mul(decimal.RequireFromString("0.3")).Div(cfg.BaseReturnRate).Floor().IntPart()
			assert.Equal(t, want, s.MaxAchievableScore)
		case model.ResultWin:
			require.True(t, s.WinMultiplier.Valid)
			assert.True(t, s.ExpectedPayout.IsPositive())
			assert.True(t, s.ExpectedPayout.LessThanOrEqual(s.BetAmount.Mul(s.WinMultiplier.Decimal)))
			assert.Equal(t, s.ExpectedPayout.Div(cfg.BaseReturnRate).Floor().IntPart(), s.MaxAchievableScore)
		case model.ResultJackpot:
			require.True(t, s.WinMultiplier.Valid)
			assert.Equal(t, model.TierJackpot, s.Tier)
			m := s.WinMultiplier.Decimal.InexactFloat64()
			assert.GreaterOrEqual(t, m, 2*cfg.MaxWinMultiplier)
			assert.LessOrEqual(t, m, 5*cfg.MaxWinMultiplier)
		}
	}
	assert.Len(t, seen, len(slots))
}

func TestGenerate_Reproducible(t *testing.T) {
	t.Parallel()

	req := model.GenerateBatch{Name: "repro", TotalGames: 300, AverageBet: decimal.NewFromInt(50)}

	_, a, err := Generate(rand.NewPCG(9, 9), req, defaultConfig())
	require.NoError(t, err)
	_, b, err := Generate(rand.NewPCG(9, 9), req, defaultConfig())
	require.NoError(t, err)

	require.Len(t, b, len(a))
	for i := range a {
		// ID случайные, сравниваем только план
		assert.Equal(t, a[i].Tier, b[i].Tier)
		assert.True(t, a[i].BetAmount.Equal(b[i].BetAmount))
		assert.True(t, a[i].ExpectedPayout.Equal(b[i].ExpectedPayout))
		assert.Equal(t, a[i].ResultType, b[i].ResultType)
		assert.Equal(t, a[i].SkillRequirement, b[i].SkillRequirement)
		assert.Equal(t, a[i].MaxAchievableScore, b[i].MaxAchievableScore)
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	t.Parallel()

	badShares := defaultConfig()
	badShares.PlayerSharePct = decimal.NewFromInt(80)

	zeroRate := defaultConfig()
	zeroRate.BaseReturnRate = decimal.Zero

	tests := []struct {
		name string
		req  model.GenerateBatch
		cfg  model.EconomicConfig
	}{
		{"zero games", model.GenerateBatch{Name: "x", TotalGames: 0, AverageBet: decimal.NewFromInt(1)}, defaultConfig()},
		{"negative games", model.GenerateBatch{Name: "x", TotalGames: -5, AverageBet: decimal.NewFromInt(1)}, defaultConfig()},
		{"zero bet", model.GenerateBatch{Name: "x", TotalGames: 10, AverageBet: decimal.Zero}, defaultConfig()},
		{"negative bet", model.GenerateBatch{Name: "x", TotalGames: 10, AverageBet: decimal.NewFromInt(-1)}, defaultConfig()},
		{"sub-cent bet", model.GenerateBatch{Name: "x", TotalGames: 10, AverageBet: decimal.RequireFromString("10.005")}, defaultConfig()},
		{"shares", model.GenerateBatch{Name: "x", TotalGames: 10, AverageBet: decimal.NewFromInt(1)}, badShares},
		{"base rate", model.GenerateBatch{Name: "x", TotalGames: 10, AverageBet: decimal.NewFromInt(1)}, zeroRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Generate(rand.NewPCG(1, 1), tt.req, tt.cfg)
			require.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}
