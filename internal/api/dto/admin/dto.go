package admin

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConfigResponse struct {
	Version            int             `json:"version"`
	PlayerSharePct     decimal.Decimal `json:"player_share_pct"`
	PlatformSharePct   decimal.Decimal `json:"platform_share_pct"`
	JackpotSharePct    decimal.Decimal `json:"jackpot_share_pct"`
	BaseReturnRate     decimal.Decimal `json:"base_return_rate"`
	MaxWinMultiplier   float64         `json:"max_win_multiplier"`
	JackpotTriggerRate float64         `json:"jackpot_trigger_rate"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ConfigPatchRequest - отсутствующие поля не меняются
type ConfigPatchRequest struct {
	PlayerSharePct     *decimal.Decimal `json:"player_share_pct,omitempty"`
	PlatformSharePct   *decimal.Decimal `json:"platform_share_pct,omitempty"`
	JackpotSharePct    *decimal.Decimal `json:"jackpot_share_pct,omitempty"`
	BaseReturnRate     *decimal.Decimal `json:"base_return_rate,omitempty"`
	MaxWinMultiplier   *float64         `json:"max_win_multiplier,omitempty"`
	JackpotTriggerRate *float64         `json:"jackpot_trigger_rate,omitempty"`
}

type GenerateBatchRequest struct {
	Name       string          `json:"name"`
	TotalGames int             `json:"total_games"`
	AverageBet decimal.Decimal `json:"average_bet"`
}

type BatchResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ConfigVersion int    `json:"config_version"`

	TotalGames      int             `json:"total_games"`
	AverageBet      decimal.Decimal `json:"average_bet"`
	TotalInvestment decimal.Decimal `json:"total_investment"`

	PlayerPayoutTarget        decimal.Decimal `json:"player_payout_target"`
	PlatformRevenueTarget     decimal.Decimal `json:"platform_revenue_target"`
	JackpotContributionTarget decimal.Decimal `json:"jackpot_contribution_target"`

	ActualPlayerPayout        decimal.Decimal `json:"actual_player_payout"`
	ActualPlatformRevenue     decimal.Decimal `json:"actual_platform_revenue"`
	ActualJackpotContribution decimal.Decimal `json:"actual_jackpot_contribution"`
	GamesPlayed               int             `json:"games_played"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type ResultCountResponse struct {
	ResultType string          `json:"result_type"`
	Total      int             `json:"total"`
	Played     int             `json:"played"`
	Expected   decimal.Decimal `json:"expected"`
	Paid       decimal.Decimal `json:"paid"`
}

type ProgressResponse struct {
	Batch       BatchResponse         `json:"batch"`
	Remaining   int                   `json:"remaining"`
	PlayedPct   float64               `json:"played_pct"`
	PayoutPct   float64               `json:"payout_pct"`
	PlannedWins decimal.Decimal       `json:"planned_wins"`
	ByResult    []ResultCountResponse `json:"by_result"`
}

type SlotResponse struct {
	ID                 string           `json:"id"`
	GameIndex          int              `json:"game_index"`
	Tier               string           `json:"tier"`
	BetAmount          decimal.Decimal  `json:"bet_amount"`
	MaxAchievableScore int64            `json:"max_achievable_score"`
	ResultType         string           `json:"result_type"`
	WinMultiplier      *decimal.Decimal `json:"win_multiplier,omitempty"`
	ExpectedPayout     decimal.Decimal  `json:"expected_payout"`
	SkillRequirement   int              `json:"skill_requirement"`
	Claimed            bool             `json:"claimed"`
	IsPlayed           bool             `json:"is_played"`
	PlayedAt           *time.Time       `json:"played_at,omitempty"`
	ActualScore        *int64           `json:"actual_score,omitempty"`
	ActualPayout       *decimal.Decimal `json:"actual_payout,omitempty"`
}

type JackpotResponse struct {
	CurrentAmount      decimal.Decimal  `json:"current_amount"`
	TotalContributions decimal.Decimal  `json:"total_contributions"`
	TotalPayouts       decimal.Decimal  `json:"total_payouts"`
	LastWinnerID       *int             `json:"last_winner_id,omitempty"`
	LastWinAmount      *decimal.Decimal `json:"last_win_amount,omitempty"`
	LastWinDate        *time.Time       `json:"last_win_date,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}
