package gateway

import (
	"context"
	"fmt"
	"strings"

	"YieldRadar/internal/model"
)

// PoolFilter narrows the pool listing endpoint.
type PoolFilter struct {
	Source    string
	Category  string
	MinTVL    float64
	MinAPR    float64
	MinVolume float64
	Token     string
	Page      int
	PerPage   int
	SortBy    string
}

// cacheKey produces a stable key from the normalized filter parameters.
func (f PoolFilter) cacheKey() string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%.0f|%.2f|%.0f|%s|%d|%d|%s",
		f.Source, f.Category, f.MinTVL, f.MinAPR, f.MinVolume, f.Token, f.Page, f.PerPage, f.SortBy))
}

// Provider defines the interface to an external market-data source.
type Provider interface {
	PoolList(ctx context.Context, f PoolFilter) ([]model.PoolRecord, error)
	PoolDetail(ctx context.Context, poolID string) (*model.PoolRecord, error)
	PoolHistory(ctx context.Context, poolID string, days int, interval string) ([]model.PoolHistoryPoint, error)
	SimulateInvestment(ctx context.Context, poolID string, amount float64, days int) (*model.SimulationResult, error)
	TokenSentiment(ctx context.Context, symbol string) (*model.SentimentSnapshot, error)
	TokenPrice(ctx context.Context, symbol string) (*model.TokenPrice, error)
	MarketConditions(ctx context.Context) (*model.MarketConditions, error)
	Name() string
}
