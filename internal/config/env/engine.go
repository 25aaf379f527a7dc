package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"tetrabet_backend/internal/config"
	"tetrabet_backend/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type bandFile struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (b bandFile) band() model.Band {
	return model.Band{Min: decimal.NewFromFloat(b.Min), Max: decimal.NewFromFloat(b.Max)}
}

// engineFile - структура config.yaml. Поля, отсутствующие в файле, сохраняют значения по умолчанию
type engineFile struct {
	Economics struct {
		PlayerSharePct     float64 `yaml:"player_share_pct"`
		PlatformSharePct   float64 `yaml:"platform_share_pct"`
		JackpotSharePct    float64 `yaml:"jackpot_share_pct"`
		BaseReturnRate     float64 `yaml:"base_return_rate"`
		MaxWinMultiplier   float64 `yaml:"max_win_multiplier"`
		JackpotTriggerRate float64 `yaml:"jackpot_trigger_rate"`
	} `yaml:"economics"`

	ShareBands struct {
		Player   bandFile `yaml:"player"`
		Platform bandFile `yaml:"platform"`
		Jackpot  bandFile `yaml:"jackpot"`
	} `yaml:"share_bands"`

	Limits struct {
		MaxBatchGames int `yaml:"max_batch_games"`
		ClaimAttempts int `yaml:"claim_attempts"`
	} `yaml:"limits"`

	Demo struct {
		ReferenceScore int64   `yaml:"reference_score"`
		Multiplier     float64 `yaml:"multiplier"`
		GainRate       float64 `yaml:"gain_rate"`
	} `yaml:"demo"`

	RateLimit struct {
		PerMinute int `yaml:"per_minute"`
		Burst     int `yaml:"burst"`
	} `yaml:"rate_limit"`
}

func defaultEngineFile() engineFile {
	var f engineFile

	f.Economics.PlayerSharePct = 70
	f.Economics.PlatformSharePct = 20
	f.Economics.JackpotSharePct = 10
	f.Economics.BaseReturnRate = 0.01
	f.Economics.MaxWinMultiplier = 15
	f.Economics.JackpotTriggerRate = 0.001

	f.ShareBands.Player = bandFile{Min: 50, Max: 90}
	f.ShareBands.Platform = bandFile{Min: 5, Max: 40}
	f.ShareBands.Jackpot = bandFile{Min: 0, Max: 20}

	f.Limits.MaxBatchGames = 1_000_000
	f.Limits.ClaimAttempts = 5

	f.Demo.ReferenceScore = 20000
	f.Demo.Multiplier = 2.5
	f.Demo.GainRate = 0.4

	f.RateLimit.PerMinute = 120
	f.RateLimit.Burst = 20

	return f
}

type engineConfig struct {
	economics     model.EconomicConfig
	bands         model.ShareBands
	maxBatchGames int
	claimAttempts int
	demo          config.DemoParams
	rateLimit     config.RateLimit
}

// NewEngineConfigFromYAML - читает config.yaml поверх значений по умолчанию.
// Если файла нет, используются только значения по умолчанию
func NewEngineConfigFromYAML(path string) (config.EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseEngineConfig(data)
}

// ParseEngineConfig - разбор и проверка YAML-конфигурации движка
func ParseEngineConfig(data []byte) (config.EngineConfig, error) {
	f := defaultEngineFile()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal engine config: %w", err)
		}
	}

	cfg := &engineConfig{
		economics: model.EconomicConfig{
			PlayerSharePct:     decimal.NewFromFloat(f.Economics.PlayerSharePct),
			PlatformSharePct:   decimal.NewFromFloat(f.Economics.PlatformSharePct),
			JackpotSharePct:    decimal.NewFromFloat(f.Economics.JackpotSharePct),
			BaseReturnRate:     decimal.NewFromFloat(f.Economics.BaseReturnRate),
			MaxWinMultiplier:   f.Economics.MaxWinMultiplier,
			JackpotTriggerRate: f.Economics.JackpotTriggerRate,
		},
		bands: model.ShareBands{
			Player:   f.ShareBands.Player.band(),
			Platform: f.ShareBands.Platform.band(),
			Jackpot:  f.ShareBands.Jackpot.band(),
		},
		maxBatchGames: f.Limits.MaxBatchGames,
		claimAttempts: f.Limits.ClaimAttempts,
		demo: config.DemoParams{
			ReferenceScore: f.Demo.ReferenceScore,
			Multiplier:     decimal.NewFromFloat(f.Demo.Multiplier),
			GainRate:       decimal.NewFromFloat(f.Demo.GainRate),
		},
		rateLimit: config.RateLimit{
			PerMinute: f.RateLimit.PerMinute,
			Burst:     f.RateLimit.Burst,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *engineConfig) validate() error {
	for name, b := range map[string]model.Band{
		"player": c.bands.Player, "platform": c.bands.Platform, "jackpot": c.bands.Jackpot,
	} {
		if b.Min.IsNegative() || b.Max.GreaterThan(decimal.NewFromInt(100)) || b.Min.GreaterThan(b.Max) {
			return fmt.Errorf("share_bands.%s: invalid band [%s, %s]", name, b.Min, b.Max)
		}
	}
	if err := c.economics.Validate(c.bands); err != nil {
		return fmt.Errorf("economics: %w", err)
	}
	if c.maxBatchGames <= 0 {
		return errors.New("limits.max_batch_games must be positive")
	}
	if c.claimAttempts <= 0 {
		return errors.New("limits.claim_attempts must be positive")
	}
	if c.demo.ReferenceScore <= 0 {
		return errors.New("demo.reference_score must be positive")
	}
	if !c.demo.Multiplier.IsPositive() || !c.demo.GainRate.IsPositive() {
		return errors.New("demo.multiplier and demo.gain_rate must be positive")
	}
	if c.rateLimit.PerMinute <= 0 || c.rateLimit.Burst <= 0 {
		return errors.New("rate_limit.per_minute and rate_limit.burst must be positive")
	}
	return nil
}

func (c *engineConfig) DefaultEconomics() model.EconomicConfig {
	return c.economics
}

func (c *engineConfig) ShareBands() model.ShareBands {
	return c.bands
}

func (c *engineConfig) MaxBatchGames() int {
	return c.maxBatchGames
}

func (c *engineConfig) ClaimAttempts() int {
	return c.claimAttempts
}

func (c *engineConfig) Demo() config.DemoParams {
	return c.demo
}

func (c *engineConfig) RateLimit() config.RateLimit {
	return c.rateLimit
}
