package batch

import (
	"math/rand/v2"

	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"
)

// tierSpec - параметры уровня выигрыша
type tierSpec struct {
	tier   model.Tier
	weight float64
	// Диапазон множителя. Для huge верхняя граница берётся из конфигурации,
	// для jackpot обе границы кратны max_win_multiplier
	minMult, maxMult   float64
	minSkill, maxSkill int
}

var tiers = [...]tierSpec{
	{tier: model.TierSmall, weight: 0.60, minMult: 1.1, maxMult: 2.0, minSkill: 1, maxSkill: 3},
	{tier: model.TierMedium, weight: 0.25, minMult: 2.0, maxMult: 5.0, minSkill: 3, maxSkill: 6},
	{tier: model.TierBig, weight: 0.10, minMult: 5.0, maxMult: 10.0, minSkill: 6, maxSkill: 8},
	{tier: model.TierHuge, weight: 0.04, minMult: 10.0, minSkill: 8, maxSkill: 10},
	{tier: model.TierJackpot, weight: 0.01, minMult: 2, maxMult: 5, minSkill: 9, maxSkill: 10},
}

const (
	// Вероятность того, что слот уровня действительно выигрышный
	winProbability = 0.7
	// Разброс ставки вокруг средней
	minBetFactor = 0.8
	maxBetFactor = 1.2
)

var (
	// Выигрыш не может забрать больше 10% оставшегося бюджета
	budgetCapShare = decimal.RequireFromString("0.1")
	// Утешительный потолок очков проигрышного слота относительно полной ставки
	consolationShare = decimal.RequireFromString("0.3")
	minBet           = decimal.RequireFromString("0.01")
)

// Generate - строит пачку и её слоты. Чистая функция: результат зависит только от
// аргументов и состояния src. ID пачки и слотов случайные и в план не входят.
// Сумма expected_payout выигрышных слотов не превышает player_payout_target.
// Джекпот-слоты в эту границу не входят: их оплачивает пул джекпота из jackpot-доли
func Generate(src rand.Source, req model.GenerateBatch, cfg model.EconomicConfig) (*model.GameBatch, []model.Slot, error) {
	if req.TotalGames <= 0 {
		return nil, nil, model.Invalid("total_games must be positive, got %d", req.TotalGames)
	}
	if !req.AverageBet.IsPositive() {
		return nil, nil, model.Invalid("average_bet must be positive, got %s", req.AverageBet)
	}
	if !model.WholeCents(req.AverageBet) {
		return nil, nil, model.Invalid("average_bet must have at most two decimal places, got %s", req.AverageBet)
	}
	if !cfg.BaseReturnRate.IsPositive() {
		return nil, nil, model.Invalid("base_return_rate must be positive")
	}
	if sum := cfg.PlayerSharePct.Add(cfg.PlatformSharePct).Add(cfg.JackpotSharePct); !sum.Equal(decimal.NewFromInt(100)) {
		return nil, nil, model.Invalid("shares must sum to 100, got %s", sum)
	}

	investment := req.AverageBet.Mul(decimal.NewFromInt(int64(req.TotalGames)))
	batch := &model.GameBatch{
		ID:                        uuid.New(),
		Name:                      req.Name,
		ConfigVersion:             cfg.Version,
		TotalGames:                req.TotalGames,
		AverageBet:                req.AverageBet,
		TotalInvestment:           investment,
		PlayerPayoutTarget:        investment.Mul(model.Share(cfg.PlayerSharePct)).Round(2),
		PlatformRevenueTarget:     investment.Mul(model.Share(cfg.PlatformSharePct)).Round(2),
		JackpotContributionTarget: investment.Mul(model.Share(cfg.JackpotSharePct)).Round(2),
	}

	g := newGenerator(src, cfg)
	remaining := batch.PlayerPayoutTarget

	slots := make([]model.Slot, req.TotalGames)
	for i := range slots {
		slots[i] = g.slot(batch.ID, req.AverageBet, &remaining)
	}

	// Перемешиваем, чтобы порядок слотов не выдавал план
	g.rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })
	for i := range slots {
		slots[i].GameIndex = i
	}

	return batch, slots, nil
}

type generator struct {
	rng    *rand.Rand
	tier   distuv.Categorical
	win    distuv.Bernoulli
	bet    distuv.Uniform
	cfg    model.EconomicConfig
	ranges [len(tiers)]distuv.Uniform
}

func newGenerator(src rand.Source, cfg model.EconomicConfig) *generator {
	weights := make([]float64, len(tiers))
	for i, t := range tiers {
		weights[i] = t.weight
	}

	g := &generator{
		rng:  rand.New(src),
		tier: distuv.NewCategorical(weights, src),
		win:  distuv.Bernoulli{P: winProbability, Src: src},
		bet:  distuv.Uniform{Min: minBetFactor, Max: maxBetFactor, Src: src},
		cfg:  cfg,
	}

	for i, t := range tiers {
		lo, hi := t.minMult, t.maxMult
		switch t.tier {
		case model.TierHuge:
			hi = cfg.MaxWinMultiplier
		case model.TierJackpot:
			lo, hi = t.minMult*cfg.MaxWinMultiplier, t.maxMult*cfg.MaxWinMultiplier
		}
		if hi < lo {
			hi = lo
		}
		g.ranges[i] = distuv.Uniform{Min: lo, Max: hi, Src: src}
	}

	return g
}

// slot - один слот в порядке генерации. remaining уменьшается на выплату выигрыша
func (g *generator) slot(batchID uuid.UUID, avgBet decimal.Decimal, remaining *decimal.Decimal) model.Slot {
	idx := int(g.tier.Rand())
	spec := tiers[idx]

	bet := avgBet.Mul(decimal.NewFromFloat(g.bet.Rand())).Round(2)
	if bet.LessThan(minBet) {
		bet = minBet
	}

	s := model.Slot{
		ID:               uuid.New(),
		BatchID:          batchID,
		Tier:             spec.tier,
		BetAmount:        bet,
		ResultType:       model.ResultLoss,
		ExpectedPayout:   decimal.Zero,
		SkillRequirement: spec.minSkill + g.rng.IntN(spec.maxSkill-spec.minSkill+1),
	}

	switch {
	case spec.tier == model.TierJackpot:
		// Джекпот платится из пула, бюджет пачки не трогает
		mult := decimal.NewFromFloat(g.ranges[idx].Rand()).Round(2)
		s.ResultType = model.ResultJackpot
		s.WinMultiplier = decimal.NewNullDecimal(mult)
		s.ExpectedPayout = bet.Mul(mult).Truncate(2)

	case g.win.Rand() == 1:
		mult := decimal.NewFromFloat(g.ranges[idx].Rand()).Round(2)
		payout := decimal.Min(bet.Mul(mult), remaining.Mul(budgetCapShare)).Truncate(2)
		if payout.IsPositive() {
			s.ResultType = model.ResultWin
			s.WinMultiplier = decimal.NewNullDecimal(mult)
			s.ExpectedPayout = payout
			*remaining = remaining.Sub(payout)
		}
	}

	if s.ResultType == model.ResultLoss {
		s.MaxAchievableScore = bet.Mul(consolationShare).Div(g.cfg.BaseReturnRate).Floor().IntPart()
	} else {
		s.MaxAchievableScore = s.ExpectedPayout.Div(g.cfg.BaseReturnRate).Floor().IntPart()
	}

	return s
}
