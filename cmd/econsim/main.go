package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	flag "github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"tetrabet_backend/internal/config/env"
	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository/memory"
	"tetrabet_backend/internal/service/batch"
	"tetrabet_backend/internal/service/economics"
	"tetrabet_backend/internal/service/game"
	"tetrabet_backend/pkg/logger"
)

// econsim - прогоняет одну пачку целиком на хранилище в памяти и печатает её экономику

const simPlayer = 1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	gamesFlag := flag.Int("games", 10_000, "number of games in the simulated batch")
	avgBetFlag := flag.String("avg-bet", "10", "average bet of the batch")
	seedFlag := flag.Uint64("seed", 0, "seed for batch generation and the score model (0 = random)")
	skillFlag := flag.Int("skill", model.DefaultSkill, "simulated player skill, 1..10")
	configFlag := flag.String("config", "config.yaml", "path to the engine YAML config")
	quietFlag := flag.Bool("quiet", false, "hide the progress bar")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	if *skillFlag < model.MinSkill || *skillFlag > model.MaxSkill {
		return fmt.Errorf("--skill must be in [%d, %d]", model.MinSkill, model.MaxSkill)
	}
	avgBet, err := decimal.NewFromString(*avgBetFlag)
	if err != nil {
		return fmt.Errorf("invalid --avg-bet: %w", err)
	}

	engine, err := env.NewEngineConfigFromYAML(*configFlag)
	if err != nil {
		return err
	}

	log := logger.Discard()
	if *verboseFlag {
		log = logger.New(true)
	}

	newSource := batch.CryptoSeeded
	scoreSource := batch.CryptoSeeded()
	if *seedFlag != 0 {
		newSource = func() rand.Source { return rand.NewPCG(*seedFlag, *seedFlag) }
		scoreSource = rand.NewPCG(*seedFlag, ^*seedFlag)
	}

	ctx := context.Background()
	clock := clockwork.NewRealClock()
	store := memory.NewStore(clock)
	tx := store.TxManager()

	econ := economics.NewEconomicsService(store, engine.DefaultEconomics(), engine.ShareBands(), tx, log)
	batches := batch.NewBatchService(econ, store, store, store, tx, newSource, *gamesFlag, clock, log)
	games := game.NewGameService(store, store, store, store, store, tx, engine.ClaimAttempts(), engine.Demo(), clock, log)

	b, err := batches.GenerateBatch(ctx, model.GenerateBatch{
		Name:       "econsim",
		TotalGames: *gamesFlag,
		AverageBet: avgBet,
	})
	if err != nil {
		return err
	}
	if err := batches.ActivateBatch(ctx, b.ID); err != nil {
		return err
	}

	// ставки игрока никогда не упираются в баланс
	store.SetBalance(simPlayer, avgBet.Mul(decimal.NewFromInt(int64(*gamesFlag))))

	// доля от потолка очков: Beta со средним skill/11, растянутая до 1.5
	scores := distuv.Beta{
		Alpha: float64(*skillFlag),
		Beta:  float64(model.MaxSkill + 1 - *skillFlag),
		Src:   scoreSource,
	}

	ratios := make([]float64, 0, *gamesFlag)
	started := time.Now()

	bar := pb.StartNew(*gamesFlag)
	if *quietFlag {
		bar.SetWriter(io.Discard)
	}
	for range *gamesFlag {
		handle, err := games.StartGame(ctx, model.StartGame{
			UserID:     simPlayer,
			BetAmount:  avgBet,
			SkillLevel: *skillFlag,
		})
		if errors.Is(err, model.ErrNoMatchingSlot) {
			break
		}
		if err != nil {
			bar.Finish()
			return err
		}

		score := int64(math.Floor(scores.Rand() * 1.5 * float64(handle.MaxScore)))
		outcome, err := games.CompleteGame(ctx, model.CompleteGame{
			UserID:    simPlayer,
			SessionID: handle.SessionID,
			Score:     score,
		})
		if err != nil {
			bar.Finish()
			return err
		}

		ratios = append(ratios, outcome.Payout.Div(handle.BetAmount).InexactFloat64())
		bar.Increment()
	}
	bar.Finish()

	report, err := batches.BatchProgress(ctx, b.ID)
	if err != nil {
		return err
	}
	pool, err := games.GetJackpot(ctx)
	if err != nil {
		return err
	}

	printReport(report, pool, store.Slots(b.ID), ratios, time.Since(started))
	return nil
}

func printReport(r *model.BatchReport, pool *model.JackpotPool, slots []model.Slot, ratios []float64, used time.Duration) {
	p := message.NewPrinter(language.English)
	b := r.Batch

	p.Printf("\nbatch           %s\n", b.Name)
	p.Printf("games played    %d / %d\n", b.GamesPlayed, b.TotalGames)
	p.Printf("investment      %s\n", money(p, b.TotalInvestment))
	p.Printf("player payout   %s target, %s actual (%.2f%%)\n",
		money(p, b.PlayerPayoutTarget), money(p, b.ActualPlayerPayout), r.PayoutPct)
	p.Printf("planned wins    %s\n", money(p, r.PlannedWins))
	p.Printf("platform        %s target, %s actual\n",
		money(p, b.PlatformRevenueTarget), money(p, b.ActualPlatformRevenue))
	p.Printf("jackpot share   %s target, %s actual\n",
		money(p, b.JackpotContributionTarget), money(p, b.ActualJackpotContribution))
	p.Printf("jackpot pool    %s current, %s paid out\n",
		money(p, pool.CurrentAmount), money(p, pool.TotalPayouts))

	var (
		count  [model.TierJackpot + 1]int
		wins   [model.TierJackpot + 1]int
		paid   [model.TierJackpot + 1]decimal.Decimal
		played [model.TierJackpot + 1]int
	)
	for _, s := range slots {
		count[s.Tier]++
		if s.ResultType != model.ResultLoss {
			wins[s.Tier]++
		}
		if s.IsPlayed {
			played[s.Tier]++
			if s.ActualPayout.Valid {
				paid[s.Tier] = paid[s.Tier].Add(s.ActualPayout.Decimal)
			}
		}
	}

	p.Printf("\n%-8s %10s %10s %10s %16s\n", "tier", "slots", "winning", "played", "paid")
	for t := model.TierSmall; t <= model.TierJackpot; t++ {
		p.Printf("%-8s %10d %10d %10d %16s\n", t, count[t], wins[t], played[t], money(p, paid[t]))
	}

	if len(ratios) > 0 {
		mean, std := stat.MeanStdDev(ratios, nil)
		p.Printf("\npayout/bet      mean %.4f, stddev %.4f\n", mean, std)
	}

	sec := max(used.Seconds(), 1e-9)
	p.Printf("used            %.2f seconds, %d games/sec\n", sec, int(float64(len(ratios))/sec))
}

func money(p *message.Printer, d decimal.Decimal) string {
	return p.Sprintf("%.2f", d.InexactFloat64())
}
