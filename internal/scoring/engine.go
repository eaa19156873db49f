// Package scoring ranks pool candidates by risk-profile-weighted feature
// combination, producing a raw score and a human-readable rationale.
package scoring

import (
	"fmt"

	"YieldRadar/internal/model"
)

// Bonuses applied after the weighted dot product.
const (
	preferredAssetBonus     = 0.1 // additive, preferred asset matches a constituent
	diversificationMultiple = 1.1 // multiplicative, pool not already held
)

// ConfidenceScorer supplies a confidence estimate for a feature state,
// implemented by the learner agent.
type ConfidenceScorer interface {
	Confidence(state []float64) float64
}

// reasonRule appends text when its feature crosses the threshold.
type reasonRule struct {
	value     func(model.FeatureVector) float64
	threshold float64
	below     bool
	text      string
}

var reasonRules = []reasonRule{
	{func(v model.FeatureVector) float64 { return v.APR }, 0.3, false, "high APR"},
	{func(v model.FeatureVector) float64 { return v.Liquidity }, 0.2, false, "strong liquidity depth"},
	{func(v model.FeatureVector) float64 { return v.Volume }, 0.3, false, "high trading volume"},
	{func(v model.FeatureVector) float64 { return v.Volatility }, 0.1, true, "low volatility"},
	{func(v model.FeatureVector) float64 { return v.Sentiment }, 0.7, false, "positive sentiment"},
	{func(v model.FeatureVector) float64 { return v.Prediction }, 0.7, false, "strong prediction confidence"},
	{func(v model.FeatureVector) float64 { return v.APRChange }, 0.7, false, "APR trending upward"},
	{func(v model.FeatureVector) float64 { return v.PriceChange24h }, 0.7, false, "positive price movement"},
}

// Engine scores candidates using validated per-profile weight tables.
type Engine struct {
	weights map[model.RiskProfile]Weights
	conf    ConfidenceScorer
}

// NewEngine validates the weight tables and creates an Engine. conf may be
// nil, in which case confidence is reported as 0.
func NewEngine(weights map[model.RiskProfile]Weights, conf ConfidenceScorer) (*Engine, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	for _, profile := range []model.RiskProfile{model.ProfileConservative, model.ProfileModerate, model.ProfileAggressive} {
		w, ok := weights[profile]
		if !ok {
			return nil, fmt.Errorf("scoring: missing weight table for profile %q", profile)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("scoring: profile %q: %w", profile, err)
		}
	}
	return &Engine{weights: weights, conf: conf}, nil
}

// Score combines the feature vector into a ranked candidate score with
// rationale. holdings lists pool IDs the caller already holds;
// preferredAsset, when set, grants a bonus to pools containing it.
func (e *Engine) Score(pool model.PoolRecord, vec model.FeatureVector, profile model.RiskProfile, holdings []string, preferredAsset string) model.ScoredPool {
	w := e.weights[profile]

	score := w.APR*vec.APR +
		w.Liquidity*vec.Liquidity +
		w.Volume*vec.Volume +
		w.Volatility*vec.Volatility +
		w.Sentiment*vec.Sentiment +
		w.Prediction*vec.Prediction

	if pool.HasToken(preferredAsset) {
		score += preferredAssetBonus
	}
	if !contains(holdings, pool.ID) {
		score *= diversificationMultiple
	}

	var reasons []string
	for _, r := range reasonRules {
		v := r.value(vec)
		if (r.below && v < r.threshold) || (!r.below && v > r.threshold) {
			reasons = append(reasons, r.text)
		}
	}

	var confidence float64
	if e.conf != nil {
		confidence = e.conf.Confidence(vec.Values())
	}

	return model.ScoredPool{
		Pool:       pool,
		Features:   vec,
		RawScore:   score,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
