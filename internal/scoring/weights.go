package scoring

import (
	"fmt"
	"math"

	"YieldRadar/internal/model"
)

// Weights is the per-profile weighting over the first six feature
// dimensions. Volatility acts as a penalty and must not be positive.
type Weights struct {
	APR        float64 `yaml:"apr"`
	Liquidity  float64 `yaml:"liquidity"`
	Volume     float64 `yaml:"volume"`
	Volatility float64 `yaml:"volatility"`
	Sentiment  float64 `yaml:"sentiment"`
	Prediction float64 `yaml:"prediction"`
}

// Validate checks signs and that the positive weights sum to 1.0 (±0.05).
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"apr": w.APR, "liquidity": w.Liquidity, "volume": w.Volume,
		"sentiment": w.Sentiment, "prediction": w.Prediction,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %.3f", name, v)
		}
	}
	if w.Volatility > 0 {
		return fmt.Errorf("volatility weight must not be positive, got %.3f", w.Volatility)
	}
	sum := w.APR + w.Liquidity + w.Volume + w.Sentiment + w.Prediction
	if math.Abs(sum-1.0) > 0.05 {
		return fmt.Errorf("positive weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

// DefaultWeights returns the built-in profile weight tables. Aggressive
// weighs APR and prediction highest with the smallest volatility penalty;
// conservative is the inverse.
func DefaultWeights() map[model.RiskProfile]Weights {
	return map[model.RiskProfile]Weights{
		model.ProfileConservative: {APR: 0.15, Liquidity: 0.30, Volume: 0.15, Volatility: -0.25, Sentiment: 0.20, Prediction: 0.20},
		model.ProfileModerate:     {APR: 0.20, Liquidity: 0.20, Volume: 0.15, Volatility: -0.15, Sentiment: 0.20, Prediction: 0.25},
		model.ProfileAggressive:   {APR: 0.30, Liquidity: 0.10, Volume: 0.10, Volatility: -0.05, Sentiment: 0.15, Prediction: 0.35},
	}
}
