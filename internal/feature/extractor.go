// Package feature normalizes raw pool records into bounded feature vectors.
package feature

import (
	"fmt"
	"math"

	"YieldRadar/internal/model"
)

// Neutral defaults used when an optional input is missing.
const (
	NeutralVolatility = 0.5
	NeutralSentiment  = 0.5
	NeutralPrediction = 0.5
	NeutralChange     = 0.5
)

// ExclusionError marks a candidate whose vector would contain a non-numeric
// component. The candidate is dropped from ranking; the batch continues.
type ExclusionError struct {
	PoolID string
	Field  string
}

func (e *ExclusionError) Error() string {
	return fmt.Sprintf("feature: pool %s excluded: non-numeric %s", e.PoolID, e.Field)
}

// SideData carries the optional sentiment and price side-channel inputs.
// Sentiment scores are on the source's native [-1, 1] scale.
type SideData struct {
	Sentiment0     *float64
	Sentiment1     *float64
	PriceChangePct *float64 // 24h price change, percent
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mapSentiment maps a native [-1, 1] score into [0, 1].
func mapSentiment(s *float64) float64 {
	if s == nil {
		return NeutralSentiment
	}
	return clamp((*s+1)/2, 0, 1)
}

// mapChange maps a percent change in [-50, 50] into [0, 1]; anything outside
// that band (or missing) is treated as neutral.
func mapChange(pct *float64) float64 {
	if pct == nil || *pct < -50 || *pct > 50 {
		return NeutralChange
	}
	return (*pct + 50) / 100
}

// Extract converts a pool record plus optional side data into a feature
// vector with every component in [0, 1]. The liquidity and volume scales map
// roughly $100M TVL and $10M daily volume to 1.0.
func Extract(pool *model.PoolRecord, side SideData) (model.FeatureVector, error) {
	v := model.FeatureVector{
		APR:       clamp(pool.APR24h/100, 0, 1),
		Liquidity: clamp(math.Log10(pool.TVL+1)/8, 0, 1),
		Volume:    clamp(math.Log10(pool.Volume24h+1)/7, 0, 1),
	}

	if pool.Volatility != nil {
		v.Volatility = clamp(*pool.Volatility/100, 0, 1)
	} else {
		v.Volatility = NeutralVolatility
	}

	v.Sentiment = (mapSentiment(side.Sentiment0) + mapSentiment(side.Sentiment1)) / 2

	if pool.Prediction != nil {
		v.Prediction = clamp(*pool.Prediction/100, 0, 1)
	} else {
		v.Prediction = NeutralPrediction
	}

	v.APRChange = mapChange(pool.APR7dChangePct)
	v.PriceChange24h = mapChange(side.PriceChangePct)

	fields := [model.FeatureCount]string{
		"apr", "liquidity", "volume", "volatility",
		"sentiment", "prediction", "apr_change", "price_change_24h",
	}
	for i, val := range v.Values() {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return model.FeatureVector{}, &ExclusionError{PoolID: pool.ID, Field: fields[i]}
		}
	}
	return v, nil
}
