package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EconomicConfig - версия экономических параметров.
// Проценты задаются в единицах 0..100, сумма трёх долей всегда равна 100
type EconomicConfig struct {
	ID      int64
	Version int

	PlayerSharePct   decimal.Decimal
	PlatformSharePct decimal.Decimal
	JackpotSharePct  decimal.Decimal

	// Сколько денежных единиц платится за одно очко
	BaseReturnRate     decimal.Decimal
	MaxWinMultiplier float64
	// JackpotTriggerRate - справочное значение для консоли оператора, движок его не читает
	JackpotTriggerRate float64

	CreatedAt time.Time
}

// EconomicConfigPatch - частичное обновление конфигурации. nil-поля не меняются
type EconomicConfigPatch struct {
	PlayerSharePct     *decimal.Decimal
	PlatformSharePct   *decimal.Decimal
	JackpotSharePct    *decimal.Decimal
	BaseReturnRate     *decimal.Decimal
	MaxWinMultiplier   *float64
	JackpotTriggerRate *float64
}

// Apply возвращает копию конфигурации с применёнными изменениями
func (p EconomicConfigPatch) Apply(cfg EconomicConfig) EconomicConfig {
	if p.PlayerSharePct != nil {
		cfg.PlayerSharePct = *p.PlayerSharePct
	}
	if p.PlatformSharePct != nil {
		cfg.PlatformSharePct = *p.PlatformSharePct
	}
	if p.JackpotSharePct != nil {
		cfg.JackpotSharePct = *p.JackpotSharePct
	}
	if p.BaseReturnRate != nil {
		cfg.BaseReturnRate = *p.BaseReturnRate
	}
	if p.MaxWinMultiplier != nil {
		cfg.MaxWinMultiplier = *p.MaxWinMultiplier
	}
	if p.JackpotTriggerRate != nil {
		cfg.JackpotTriggerRate = *p.JackpotTriggerRate
	}
	return cfg
}

// Band - допустимый диапазон значения (включительно)
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains проверяет попадание значения в диапазон
func (b Band) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Min) && v.LessThanOrEqual(b.Max)
}

// ShareBands - ограничения на доли, которые может выставить оператор
type ShareBands struct {
	Player   Band
	Platform Band
	Jackpot  Band
}

var hundred = decimal.NewFromInt(100)

// MinMaxWinMultiplier - нижняя граница max_win_multiplier: диапазон huge-уровня начинается с 10x
const MinMaxWinMultiplier = 10

// Validate проверяет конфигурацию перед сохранением
func (c EconomicConfig) Validate(bands ShareBands) error {
	for _, share := range []struct {
		name  string
		value decimal.Decimal
		band  Band
	}{
		{"player_share_pct", c.PlayerSharePct, bands.Player},
		{"platform_share_pct", c.PlatformSharePct, bands.Platform},
		{"jackpot_share_pct", c.JackpotSharePct, bands.Jackpot},
	} {
		if share.value.IsNegative() {
			return Invalid("%s must not be negative", share.name)
		}
		if !share.band.Contains(share.value) {
			return Invalid("%s %s is outside [%s, %s]", share.name, share.value, share.band.Min, share.band.Max)
		}
	}

	sum := c.PlayerSharePct.Add(c.PlatformSharePct).Add(c.JackpotSharePct)
	if !sum.Equal(hundred) {
		return Invalid("shares must sum to 100, got %s", sum)
	}

	if !c.BaseReturnRate.IsPositive() || c.BaseReturnRate.GreaterThan(decimal.NewFromInt(1)) {
		return Invalid("base_return_rate must be in (0, 1], got %s", c.BaseReturnRate)
	}
	if c.MaxWinMultiplier < MinMaxWinMultiplier {
		return Invalid("max_win_multiplier must be at least %d, got %g", MinMaxWinMultiplier, c.MaxWinMultiplier)
	}
	if c.JackpotTriggerRate < 0 || c.JackpotTriggerRate > 1 {
		return Invalid("jackpot_trigger_rate must be in [0, 1], got %g", c.JackpotTriggerRate)
	}
	return nil
}

// Share переводит процент в долю 0..1
func Share(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}
