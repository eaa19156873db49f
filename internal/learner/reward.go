package learner

// Reward composition. Unrealized rewards blend the profile-weighted feature
// score with an APR-derived profit estimate; realized rewards additionally
// fold in the user's 1-5 rating.
const (
	unrealizedScoreWeight  = 0.5
	unrealizedProfitWeight = 0.5

	realizedBaseWeight = 0.7
	realizedUserWeight = 0.3
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EstimatedProfitRatio estimates the fraction of the position earned so far
// from the pool's APR and the days elapsed, clamped to [-1, 1].
func EstimatedProfitRatio(aprPct, daysElapsed float64) float64 {
	return clamp(aprPct/100*daysElapsed/365, -1, 1)
}

// ProfitRatio computes the actual-exit profit ratio scaled into [-1, 1].
func ProfitRatio(entryAmount, exitAmount float64) float64 {
	if entryAmount <= 0 {
		return 0
	}
	return clamp((exitAmount-entryAmount)/entryAmount, -1, 1)
}

// UnrealizedReward is the periodic feedback reward for a still-open
// position.
func UnrealizedReward(weightedScore, profitRatio float64) float64 {
	return weightedScore*unrealizedScoreWeight + profitRatio*unrealizedProfitWeight
}

// RealizedReward combines a base reward (unrealized formula, or actual-exit
// profit ratio when an exit amount was supplied) with the user's rating on
// a 1-5 scale.
func RealizedReward(base float64, rating int) float64 {
	user := (float64(rating) - 3) / 2
	return base*realizedBaseWeight + user*realizedUserWeight
}
