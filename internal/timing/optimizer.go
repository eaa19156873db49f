// Package timing adjusts and re-sorts ranked candidates using
// market-condition factors: gas cost, volatility, and APR momentum.
package timing

import (
	"sort"

	"YieldRadar/internal/model"
)

// Blend factors for the timing score and the final ordering key.
const (
	scoreWeight    = 0.6
	gasWeight      = 0.1
	volWeight      = 0.1
	momentumWeight = 0.2

	orderRawWeight    = 0.7
	orderTimingWeight = 0.3
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

// momentum maps the 24h-vs-7d APR trend into [0, 1]; 0.5 when trend data
// is absent.
func momentum(pool model.PoolRecord) float64 {
	if pool.APR7d == 0 {
		return 0.5
	}
	base := pool.APR7d
	if base < 1 {
		base = 1
	}
	trend := clamp((pool.APR24h-pool.APR7d)/base*5, -0.5, 0.5)
	return clamp(0.5+trend, 0, 1)
}

func band(score float64) model.TimingBand {
	switch {
	case score > 0.8:
		return model.TimingOptimal
	case score > 0.6:
		return model.TimingGood
	case score > 0.4:
		return model.TimingNeutral
	default:
		return model.TimingSuboptimal
	}
}

// Adjust fills in each candidate's timing score and band, then re-sorts the
// slice by rawScore and timingScore blended, descending. The sort is stable:
// ties preserve prior relative order.
func Adjust(candidates []model.ScoredPool, mc model.MarketConditions) []model.ScoredPool {
	gasFactor := 1 - clamp(mc.GasPriceGwei/100, 0, 1)
	volFactor := 1 - mc.Volatility

	for i := range candidates {
		c := &candidates[i]
		c.TimingScore = c.RawScore*scoreWeight +
			gasFactor*gasWeight +
			volFactor*volWeight +
			momentum(c.Pool)*momentumWeight
		c.TimingBand = band(c.TimingScore)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ki := candidates[i].RawScore*orderRawWeight + candidates[i].TimingScore*orderTimingWeight
		kj := candidates[j].RawScore*orderRawWeight + candidates[j].TimingScore*orderTimingWeight
		return ki > kj
	})
	return candidates
}
