package converter

import (
	dto "tetrabet_backend/internal/api/dto/admin"
	"tetrabet_backend/internal/model"
)

func ToConfigResponse(c model.EconomicConfig) dto.ConfigResponse {
	return dto.ConfigResponse{
		Version:            c.Version,
		PlayerSharePct:     c.PlayerSharePct,
		PlatformSharePct:   c.PlatformSharePct,
		JackpotSharePct:    c.JackpotSharePct,
		BaseReturnRate:     c.BaseReturnRate,
		MaxWinMultiplier:   c.MaxWinMultiplier,
		JackpotTriggerRate: c.JackpotTriggerRate,
		CreatedAt:          c.CreatedAt.UTC(),
	}
}

func ToConfigPatch(req dto.ConfigPatchRequest) model.EconomicConfigPatch {
	return model.EconomicConfigPatch{
		PlayerSharePct:     req.PlayerSharePct,
		PlatformSharePct:   req.PlatformSharePct,
		JackpotSharePct:    req.JackpotSharePct,
		BaseReturnRate:     req.BaseReturnRate,
		MaxWinMultiplier:   req.MaxWinMultiplier,
		JackpotTriggerRate: req.JackpotTriggerRate,
	}
}

func ToGenerateBatch(req dto.GenerateBatchRequest) model.GenerateBatch {
	return model.GenerateBatch{
		Name:       req.Name,
		TotalGames: req.TotalGames,
		AverageBet: req.AverageBet,
	}
}

func ToBatchResponse(b model.GameBatch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:                        b.ID.String(),
		Name:                      b.Name,
		ConfigVersion:             b.ConfigVersion,
		TotalGames:                b.TotalGames,
		AverageBet:                b.AverageBet,
		TotalInvestment:           b.TotalInvestment,
		PlayerPayoutTarget:        b.PlayerPayoutTarget,
		PlatformRevenueTarget:     b.PlatformRevenueTarget,
		JackpotContributionTarget: b.JackpotContributionTarget,
		ActualPlayerPayout:        b.ActualPlayerPayout,
		ActualPlatformRevenue:     b.ActualPlatformRevenue,
		ActualJackpotContribution: b.ActualJackpotContribution,
		GamesPlayed:               b.GamesPlayed,
		IsActive:                  b.IsActive,
		CreatedAt:                 b.CreatedAt.UTC(),
	}
}

func ToBatchResponses(batches []model.GameBatch) []dto.BatchResponse {
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, ToBatchResponse(b))
	}
	return out
}

func ToProgressResponse(r model.BatchReport) dto.ProgressResponse {
	byResult := make([]dto.ResultCountResponse, 0, len(r.ByResult))
	for _, c := range r.ByResult {
		byResult = append(byResult, dto.ResultCountResponse{
			ResultType: string(c.ResultType),
			Total:      c.Total,
			Played:     c.Played,
			Expected:   c.Expected,
			Paid:       c.Paid,
		})
	}

	return dto.ProgressResponse{
		Batch:       ToBatchResponse(r.Batch),
		Remaining:   r.Remaining,
		PlayedPct:   r.PlayedPct,
		PayoutPct:   r.PayoutPct,
		PlannedWins: r.PlannedWins,
		ByResult:    byResult,
	}
}

func ToSlotResponses(slots []model.Slot) []dto.SlotResponse {
	out := make([]dto.SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, dto.SlotResponse{
			ID:                 s.ID.String(),
			GameIndex:          s.GameIndex,
			Tier:               s.Tier.String(),
			BetAmount:          s.BetAmount,
			MaxAchievableScore: s.MaxAchievableScore,
			ResultType:         string(s.ResultType),
			WinMultiplier:      nullDecimal(s.WinMultiplier),
			ExpectedPayout:     s.ExpectedPayout,
			SkillRequirement:   s.SkillRequirement,
			Claimed:            s.SessionID != nil,
			IsPlayed:           s.IsPlayed,
			PlayedAt:           utc(s.PlayedAt),
			ActualScore:        s.ActualScore,
			ActualPayout:       nullDecimal(s.ActualPayout),
		})
	}
	return out
}

func ToAdminJackpotResponse(p model.JackpotPool) dto.JackpotResponse {
	return dto.JackpotResponse{
		CurrentAmount:      p.CurrentAmount,
		TotalContributions: p.TotalContributions,
		TotalPayouts:       p.TotalPayouts,
		LastWinnerID:       p.LastWinnerID,
		LastWinAmount:      nullDecimal(p.LastWinAmount),
		LastWinDate:        utc(p.LastWinDate),
		UpdatedAt:          p.UpdatedAt.UTC(),
	}
}
