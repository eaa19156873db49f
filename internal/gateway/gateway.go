// Package gateway provides resilient access to external market-data
// providers: TTL caching, per-endpoint rate limiting, circuit breaking, and
// graceful degradation to last-known or locally derived values. Expected
// failure modes surface as typed errors, never as panics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"YieldRadar/internal/model"
)

// Options configures a Gateway. Zero values fall back to defaults
// (TTL 300s, timeout 10s, rate window 30s).
type Options struct {
	TTL               time.Duration
	Timeout           time.Duration
	RateWindows       map[string]time.Duration
	DefaultRateWindow time.Duration
	Now               func() time.Time
}

// Gateway mediates all access to a Provider.
type Gateway struct {
	provider Provider
	cache    *Cache
	limiter  *Limiter
	breaker  *gobreaker.CircuitBreaker
	log      zerolog.Logger
	ttl      time.Duration
	timeout  time.Duration
}

// New creates a Gateway around provider.
func New(provider Provider, opts Options, log zerolog.Logger) *Gateway {
	if opts.TTL <= 0 {
		opts.TTL = 300 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Gateway{
		provider: provider,
		cache:    NewCache(opts.Now),
		limiter:  NewLimiter(opts.RateWindows, opts.DefaultRateWindow, opts.Now),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    provider.Name(),
			Timeout: 60 * time.Second,
		}),
		log:     log,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
	}
}

// fetch applies the gateway discipline to one endpoint call: serve from
// cache while fresh, respect the rate window (serving the last-known value
// when throttled), bound the call, and fall back to the last-known value on
// failure. The second return reports staleness: true whenever the value came
// from an expired cache entry, so callers can annotate degraded results.
func fetch[T any](ctx context.Context, g *Gateway, endpoint, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if v, ok := g.cache.Get(key); ok {
		return v.(T), false, nil
	}
	if !g.limiter.Allow(endpoint) {
		if v, ok := g.cache.Last(key); ok {
			g.log.Debug().Str("endpoint", endpoint).Msg("rate window active, serving last-known value")
			return v.(T), true, nil
		}
		return zero, false, ErrRateLimited
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	v, err := g.breaker.Execute(func() (any, error) {
		return fn(callCtx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &TransportError{Endpoint: endpoint, Err: err}
		}
		g.log.Warn().Str("endpoint", endpoint).Err(err).Msg("provider call failed")
		if v, ok := g.cache.Last(key); ok {
			return v.(T), true, nil
		}
		return zero, false, err
	}

	out := v.(T)
	g.cache.Set(key, out, g.ttl)
	return out, false, nil
}

// PoolList returns investable pools matching f.
func (g *Gateway) PoolList(ctx context.Context, f PoolFilter) ([]model.PoolRecord, bool, error) {
	return fetch(ctx, g, "pools", "pools:"+f.cacheKey(), func(ctx context.Context) ([]model.PoolRecord, error) {
		return g.provider.PoolList(ctx, f)
	})
}

// PoolDetail returns a single pool by ID.
func (g *Gateway) PoolDetail(ctx context.Context, poolID string) (*model.PoolRecord, bool, error) {
	return fetch(ctx, g, "pool_detail", "pool:"+poolID, func(ctx context.Context) (*model.PoolRecord, error) {
		return g.provider.PoolDetail(ctx, poolID)
	})
}

// PoolHistory returns a pool's historical series.
func (g *Gateway) PoolHistory(ctx context.Context, poolID string, days int, interval string) ([]model.PoolHistoryPoint, bool, error) {
	key := fmt.Sprintf("history:%s|%d|%s", poolID, days, interval)
	return fetch(ctx, g, "pool_history", key, func(ctx context.Context) ([]model.PoolHistoryPoint, error) {
		return g.provider.PoolHistory(ctx, poolID, days, interval)
	})
}

// SimulateInvestment estimates the outcome of a position. When the
// simulation endpoint is unavailable it derives a minimal estimate from the
// pool's current APR, marked Approximate.
func (g *Gateway) SimulateInvestment(ctx context.Context, poolID string, amount float64, days int) (*model.SimulationResult, bool, error) {
	key := fmt.Sprintf("simulate:%s|%.2f|%d", poolID, amount, days)
	sim, stale, err := fetch(ctx, g, "simulate", key, func(ctx context.Context) (*model.SimulationResult, error) {
		return g.provider.SimulateInvestment(ctx, poolID, amount, days)
	})
	if err == nil {
		return sim, stale, nil
	}

	pool, detailStale, derr := g.PoolDetail(ctx, poolID)
	if derr != nil {
		return nil, false, err
	}
	g.log.Info().Str("pool", poolID).Msg("simulation endpoint unavailable, deriving estimate from APR")
	return &model.SimulationResult{
		PoolID:          poolID,
		Amount:          amount,
		Days:            days,
		EstimatedReturn: amount * pool.APR24h / 100 * float64(days) / 365,
		EstimatedAPR:    pool.APR24h,
		Approximate:     true,
	}, detailStale, nil
}

// TokenSentiment returns the sentiment snapshot for a token symbol.
func (g *Gateway) TokenSentiment(ctx context.Context, symbol string) (*model.SentimentSnapshot, bool, error) {
	return fetch(ctx, g, "sentiment", "sentiment:"+symbol, func(ctx context.Context) (*model.SentimentSnapshot, error) {
		return g.provider.TokenSentiment(ctx, symbol)
	})
}

// TokenPrice returns the price snapshot for a token symbol.
func (g *Gateway) TokenPrice(ctx context.Context, symbol string) (*model.TokenPrice, bool, error) {
	return fetch(ctx, g, "price", "price:"+symbol, func(ctx context.Context) (*model.TokenPrice, error) {
		return g.provider.TokenPrice(ctx, symbol)
	})
}

// MarketConditions returns chain-wide factors for the timing stage.
func (g *Gateway) MarketConditions(ctx context.Context) (*model.MarketConditions, bool, error) {
	return fetch(ctx, g, "market", "market", func(ctx context.Context) (*model.MarketConditions, error) {
		return g.provider.MarketConditions(ctx)
	})
}
