package model

// FeatureCount is the fixed dimensionality of a FeatureVector.
const FeatureCount = 8

// FeatureVector is the normalized representation of a pool candidate.
// Every component lies in [0, 1]; missing inputs resolve to neutral
// defaults at extraction time, never to NaN.
type FeatureVector struct {
	APR            float64 `json:"apr"`
	Liquidity      float64 `json:"liquidity"`
	Volume         float64 `json:"volume"`
	Volatility     float64 `json:"volatility"`
	Sentiment      float64 `json:"sentiment"`
	Prediction     float64 `json:"prediction"`
	APRChange      float64 `json:"apr_change"`
	PriceChange24h float64 `json:"price_change_24h"`
}

// Values returns the components in their canonical order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.APR, v.Liquidity, v.Volume, v.Volatility,
		v.Sentiment, v.Prediction, v.APRChange, v.PriceChange24h,
	}
}
