// Package advisor orchestrates the recommendation pipeline: gateway fetch,
// feature extraction, scoring, timing adjustment, and position sizing, plus
// the feedback loop feeding the learner.
package advisor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"YieldRadar/internal/feature"
	"YieldRadar/internal/gateway"
	"YieldRadar/internal/learner"
	"YieldRadar/internal/model"
	"YieldRadar/internal/recorder"
	"YieldRadar/internal/scoring"
	"YieldRadar/internal/sizer"
	"YieldRadar/internal/timing"
)

// maxSuggestions caps the ranked list returned to the caller.
const maxSuggestions = 10

// Result statuses.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// Options tunes an Advisor. The clock is injectable for tests.
type Options struct {
	Filter gateway.PoolFilter
	Now    func() time.Time
}

// Advisor runs recommendation requests and tracks entered positions for the
// feedback loop.
type Advisor struct {
	gw     *gateway.Gateway
	engine *scoring.Engine
	agent  *learner.Agent
	rec    recorder.Recorder
	filter gateway.PoolFilter
	now    func() time.Time
	log    zerolog.Logger

	mu        sync.Mutex
	positions map[string]*Position
}

// New creates an Advisor. rec may be a NoopRecorder; agent may be nil, which
// disables the learning loop and confidence estimates.
func New(gw *gateway.Gateway, engine *scoring.Engine, agent *learner.Agent, rec recorder.Recorder, opts Options, log zerolog.Logger) *Advisor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Advisor{
		gw:        gw,
		engine:    engine,
		agent:     agent,
		rec:       rec,
		filter:    opts.Filter,
		now:       opts.Now,
		log:       log,
		positions: make(map[string]*Position),
	}
}

// Recommend runs the full pipeline for one request. Expected failure modes
// never surface as errors; the result is best-effort with FallbackUsed set
// whenever degraded data was substituted.
func (a *Advisor) Recommend(ctx context.Context, req model.Request) model.Result {
	profile := req.RiskProfile
	if !profile.Valid() {
		profile = model.ProfileModerate
	}

	pools, poolsStale, err := a.gw.PoolList(ctx, a.filter)
	if err != nil || len(pools) == 0 {
		a.log.Warn().Err(err).Msg("pool listing unavailable")
		return model.Result{
			Status:          StatusFailed,
			MarketSentiment: "unknown",
			Explanation:     "Market data is currently unavailable; please retry shortly.",
			FallbackUsed:    true,
		}
	}

	fallback := poolsStale
	mc, mcStale, err := a.gw.MarketConditions(ctx)
	if err != nil {
		mc = &model.MarketConditions{GasPriceGwei: 30, Volatility: 0.5}
		fallback = true
	}
	fallback = fallback || mcStale

	scored := make([]model.ScoredPool, 0, len(pools))
	for i := range pools {
		pool := pools[i]
		side, degraded := a.sideData(ctx, &pool)
		fallback = fallback || degraded

		vec, err := feature.Extract(&pool, side)
		if err != nil {
			a.log.Debug().Err(err).Str("pool", pool.ID).Msg("candidate excluded")
			continue
		}
		scored = append(scored, a.engine.Score(pool, vec, profile, req.Holdings, req.PreferredAsset))
	}

	if len(scored) == 0 {
		return model.Result{
			Status:          StatusFailed,
			MarketSentiment: "unknown",
			Explanation:     "No investable pools passed validation.",
			FallbackUsed:    fallback,
		}
	}

	ranked := timing.Adjust(scored, *mc)
	positions := sizer.Allocate(ranked, req.Amount, profile)
	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}

	sentiment := sentimentLabel(ranked)
	rlPowered := a.agent != nil && a.agent.TrainSteps() > 0

	res := model.Result{
		Status:          StatusSuccess,
		Suggestions:     ranked,
		Positions:       positions,
		MarketSentiment: sentiment,
		Explanation:     buildExplanation(profile, ranked, positions, sentiment, fallback),
		FallbackUsed:    fallback,
		RLPowered:       rlPowered,
	}
	if fallback {
		res.Status = StatusDegraded
	}

	if err := a.rec.RecordRecommendation(&recorder.RecommendationSnapshot{
		RequestID:       uuid.NewString(),
		Profile:         profile,
		Amount:          req.Amount,
		MarketSentiment: sentiment,
		FallbackUsed:    fallback,
		RLPowered:       rlPowered,
		Suggestions:     ranked,
		Positions:       positions,
	}); err != nil {
		a.log.Error().Err(err).Msg("failed to record recommendation")
	}
	return res
}

// sideData gathers the optional sentiment and price inputs for one pool,
// reporting whether any source degraded to a neutral default or served a
// stale value.
func (a *Advisor) sideData(ctx context.Context, pool *model.PoolRecord) (feature.SideData, bool) {
	var side feature.SideData
	degraded := false

	if snap, stale, err := a.gw.TokenSentiment(ctx, pool.Token0); err == nil {
		side.Sentiment0 = &snap.Score
		degraded = degraded || stale
	} else {
		degraded = true
	}
	if snap, stale, err := a.gw.TokenSentiment(ctx, pool.Token1); err == nil {
		side.Sentiment1 = &snap.Score
		degraded = degraded || stale
	} else {
		degraded = true
	}
	if price, stale, err := a.gw.TokenPrice(ctx, pool.Token0); err == nil {
		side.PriceChangePct = &price.PercentChange24h
		degraded = degraded || stale
	} else {
		degraded = true
	}
	return side, degraded
}

// sentimentLabel summarizes the ranked pools' sentiment feature.
func sentimentLabel(ranked []model.ScoredPool) string {
	if len(ranked) == 0 {
		return "unknown"
	}
	var sum float64
	for _, c := range ranked {
		sum += c.Features.Sentiment
	}
	avg := sum / float64(len(ranked))
	switch {
	case avg > 0.6:
		return "bullish"
	case avg < 0.4:
		return "bearish"
	default:
		return "neutral"
	}
}
