package model

import "time"

// PoolRecord holds the raw attributes of an investable liquidity pool as
// returned by the data gateway. Immutable for the duration of one
// recommendation request. Optional fields are nil when the upstream source
// did not supply them.
type PoolRecord struct {
	ID             string   `json:"pool_id"`
	Token0         string   `json:"token0"`
	Token1         string   `json:"token1"`
	APR24h         float64  `json:"apr_24h"`
	APR7d          float64  `json:"apr_7d"`
	APR30d         float64  `json:"apr_30d"`
	TVL            float64  `json:"tvl_usd"`
	Volume24h      float64  `json:"volume_24h"`
	Volatility     *float64 `json:"volatility,omitempty"`
	Prediction     *float64 `json:"prediction_score,omitempty"`
	APR7dChangePct *float64 `json:"apr_7d_change_pct,omitempty"`
}

// HasToken reports whether symbol matches either constituent asset.
func (p *PoolRecord) HasToken(symbol string) bool {
	return symbol != "" && (symbol == p.Token0 || symbol == p.Token1)
}

// PoolHistoryPoint is one sample of a pool's historical series.
type PoolHistoryPoint struct {
	Time      time.Time `json:"time"`
	APR       float64   `json:"apr"`
	TVL       float64   `json:"tvl_usd"`
	Volume24h float64   `json:"volume_24h"`
}

// SentimentSnapshot is a token-level sentiment reading on the source's
// native [-1, 1] scale.
type SentimentSnapshot struct {
	Symbol    string    `json:"symbol"`
	Score     float64   `json:"score"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TokenPrice is a spot price snapshot for a single token.
type TokenPrice struct {
	Symbol           string  `json:"symbol"`
	PriceUSD         float64 `json:"price_usd"`
	PercentChange24h float64 `json:"percent_change_24h"`
}

// SimulationResult estimates the outcome of holding a pool position.
// Approximate is set when the dedicated simulation endpoint was unavailable
// and the estimate was derived locally from the pool's current APR.
type SimulationResult struct {
	PoolID          string  `json:"pool_id"`
	Amount          float64 `json:"amount"`
	Days            int     `json:"days"`
	EstimatedReturn float64 `json:"estimated_return"`
	EstimatedAPR    float64 `json:"estimated_apr"`
	Approximate     bool    `json:"approximate"`
}

// MarketConditions captures chain-wide factors used by the timing stage.
// Volatility is normalized to [0, 1].
type MarketConditions struct {
	GasPriceGwei float64 `json:"gas_price_gwei"`
	Volatility   float64 `json:"volatility"`
}
