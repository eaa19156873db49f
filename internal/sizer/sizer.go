// Package sizer allocates an investment amount across top-ranked candidates
// under risk-profile constraints.
package sizer

import (
	"math"

	"YieldRadar/internal/model"
)

// minPositionFraction drops residual tiny allocations: any position below
// 1% of the requested total is removed outright.
const minPositionFraction = 0.01

// TopK returns how many ranked candidates a profile may hold.
func TopK(profile model.RiskProfile) int {
	switch profile {
	case model.ProfileConservative:
		return 5
	case model.ProfileAggressive:
		return 2
	default:
		return 3
	}
}

// Allocate splits totalAmount across the top-ranked candidates. Weights are
// proportional to raw score (equal split when the score sum is zero), then
// smoothed per profile: conservative blends 50/50 with an equal split,
// aggressive concentrates by raising weights to the power 1.5 and
// renormalizing. Amounts are rounded down to cents so their sum never
// exceeds totalAmount. A non-positive totalAmount returns the candidates
// flagged for manual sizing instead of numeric allocations.
func Allocate(ranked []model.ScoredPool, totalAmount float64, profile model.RiskProfile) []model.SizedPosition {
	if len(ranked) == 0 {
		return nil
	}
	k := TopK(profile)
	if k > len(ranked) {
		k = len(ranked)
	}
	top := ranked[:k]

	if totalAmount <= 0 {
		out := make([]model.SizedPosition, k)
		for i, c := range top {
			out[i] = model.SizedPosition{Pool: c.Pool, ManualSizing: true}
		}
		return out
	}

	weights := make([]float64, k)
	var scoreSum float64
	for _, c := range top {
		scoreSum += c.RawScore
	}
	for i, c := range top {
		if scoreSum == 0 {
			weights[i] = 1 / float64(k)
		} else {
			weights[i] = c.RawScore / scoreSum
		}
	}

	switch profile {
	case model.ProfileConservative:
		equal := 1 / float64(k)
		for i := range weights {
			weights[i] = weights[i]*0.5 + equal*0.5
		}
	case model.ProfileAggressive:
		var sum float64
		for i := range weights {
			weights[i] = math.Pow(weights[i], 1.5)
			sum += weights[i]
		}
		if sum > 0 {
			for i := range weights {
				weights[i] /= sum
			}
		}
	}

	out := make([]model.SizedPosition, 0, k)
	for i, c := range top {
		amount := math.Floor(weights[i]*totalAmount*100) / 100
		if amount < totalAmount*minPositionFraction {
			continue
		}
		out = append(out, model.SizedPosition{Pool: c.Pool, Amount: amount, Weight: weights[i]})
	}
	return out
}
