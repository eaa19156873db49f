package advisor

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldRadar/internal/gateway"
	"YieldRadar/internal/learner"
	"YieldRadar/internal/model"
	"YieldRadar/internal/recorder"
	"YieldRadar/internal/scoring"
)

// captureRecorder collects everything recorded so tests can inspect it.
type captureRecorder struct {
	snapshots []*recorder.RecommendationSnapshot
	feedback  []*recorder.FeedbackEvent
}

func (c *captureRecorder) RecordRecommendation(snap *recorder.RecommendationSnapshot) error {
	c.snapshots = append(c.snapshots, snap)
	return nil
}

func (c *captureRecorder) RecordFeedback(evt *recorder.FeedbackEvent) error {
	c.feedback = append(c.feedback, evt)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

// advancingClock steps one second per reading so rate windows never throttle
// intra-request provider calls.
func advancingClock() func() time.Time {
	t := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func healthyPool() model.PoolRecord {
	vol := 10.0
	pred := 90.0
	change := 5.0
	return model.PoolRecord{
		ID:             "eth-usdc",
		Token0:         "ETH",
		Token1:         "USDC",
		APR24h:         40,
		APR7d:          38,
		TVL:            5_000_000,
		Volume24h:      1_000_000,
		Volatility:     &vol,
		Prediction:     &pred,
		APR7dChangePct: &change,
	}
}

func newTestAdvisor(t *testing.T, mock *gateway.MockProvider, agent *learner.Agent, rec recorder.Recorder) *Advisor {
	t.Helper()
	gw := gateway.New(mock, gateway.Options{
		DefaultRateWindow: time.Nanosecond,
		Now:               advancingClock(),
	}, zerolog.Nop())
	engine, err := scoring.NewEngine(nil, agent)
	require.NoError(t, err)
	return New(gw, engine, agent, rec, Options{}, zerolog.Nop())
}

func newTestAgent(t *testing.T) (*learner.Agent, *learner.ReplayMemory) {
	t.Helper()
	dir := t.TempDir()
	memory, err := learner.NewReplayMemory(100, filepath.Join(dir, "replay.json"), zerolog.Nop())
	require.NoError(t, err)
	agent, err := learner.NewAgent(learner.Config{}, memory, rand.New(rand.NewSource(11)), filepath.Join(dir, "weights.json"), zerolog.Nop())
	require.NoError(t, err)
	return agent, memory
}

func TestRecommend_HealthyPipeline(t *testing.T) {
	mock := gateway.NewMockProvider()
	mock.Pools = []model.PoolRecord{healthyPool()}
	mock.Sentiments["ETH"] = 0.6
	mock.Sentiments["USDC"] = 0.6
	mock.Prices["ETH"] = model.TokenPrice{Symbol: "ETH", PriceUSD: 3000, PercentChange24h: 5}
	mock.Conditions = model.MarketConditions{GasPriceGwei: 30, Volatility: 0.3}

	adv := newTestAdvisor(t, mock, nil, recorder.NewNoopRecorder())
	res := adv.Recommend(context.Background(), model.Request{
		RiskProfile: model.ProfileModerate,
		Amount:      1000,
	})

	assert.Equal(t, StatusSuccess, res.Status)
	assert.False(t, res.FallbackUsed)
	require.Len(t, res.Suggestions, 1)

	sugg := res.Suggestions[0]
	assert.Greater(t, sugg.RawScore, 0.5)
	assert.Contains(t, sugg.Reasons, "high APR")
	// Both tokens at sentiment 0.6 map to a 0.8 feature, so the market
	// reads bullish.
	assert.InDelta(t, 0.8, sugg.Features.Sentiment, 1e-9)
	assert.Equal(t, "bullish", res.MarketSentiment)
	assert.NotEmpty(t, sugg.TimingBand)

	var total float64
	for _, pos := range res.Positions {
		total += pos.Amount
	}
	assert.LessOrEqual(t, total, 1000.0)
	assert.Greater(t, total, 0.0)
	assert.NotEmpty(t, res.Explanation)
}

func TestRecommend_SentimentOutageDegradesGracefully(t *testing.T) {
	mock := gateway.NewMockProvider()
	mock.Pools = []model.PoolRecord{healthyPool()}
	mock.Prices["ETH"] = model.TokenPrice{Symbol: "ETH", PriceUSD: 3000, PercentChange24h: 5}
	mock.Conditions = model.MarketConditions{GasPriceGwei: 30, Volatility: 0.3}
	mock.Fail["sentiment"] = true

	adv := newTestAdvisor(t, mock, nil, recorder.NewNoopRecorder())
	res := adv.Recommend(context.Background(), model.Request{
		RiskProfile: model.ProfileModerate,
		Amount:      1000,
	})

	assert.Equal(t, StatusDegraded, res.Status)
	assert.True(t, res.FallbackUsed)
	require.Len(t, res.Suggestions, 1)
	assert.InDelta(t, 0.5, res.Suggestions[0].Features.Sentiment, 1e-9)
	assert.Equal(t, "neutral", res.MarketSentiment)
}

func TestRecommend_StaleDataMarksFallback(t *testing.T) {
	mock := gateway.NewMockProvider()
	mock.Pools = []model.PoolRecord{healthyPool()}
	mock.Sentiments["ETH"] = 0.6
	mock.Sentiments["USDC"] = 0.6
	mock.Prices["ETH"] = model.TokenPrice{Symbol: "ETH", PriceUSD: 3000, PercentChange24h: 5}
	mock.Conditions = model.MarketConditions{GasPriceGwei: 30, Volatility: 0.3}

	// Short TTL so the second request finds every cached entry expired.
	gw := gateway.New(mock, gateway.Options{
		TTL:               time.Second,
		DefaultRateWindow: time.Nanosecond,
		Now:               advancingClock(),
	}, zerolog.Nop())
	engine, err := scoring.NewEngine(nil, nil)
	require.NoError(t, err)
	adv := New(gw, engine, nil, recorder.NewNoopRecorder(), Options{}, zerolog.Nop())

	res := adv.Recommend(context.Background(), model.Request{RiskProfile: model.ProfileModerate, Amount: 1000})
	require.Equal(t, StatusSuccess, res.Status)

	// Provider goes down; the gateway serves last-known values and the
	// result must be annotated as degraded.
	for _, endpoint := range []string{"pools", "market", "sentiment", "price"} {
		mock.Fail[endpoint] = true
	}
	res = adv.Recommend(context.Background(), model.Request{RiskProfile: model.ProfileModerate, Amount: 1000})

	assert.Equal(t, StatusDegraded, res.Status)
	assert.True(t, res.FallbackUsed)
	require.Len(t, res.Suggestions, 1)
}

func TestRecommend_PoolListFailure(t *testing.T) {
	mock := gateway.NewMockProvider()
	mock.Fail["pools"] = true

	adv := newTestAdvisor(t, mock, nil, recorder.NewNoopRecorder())
	res := adv.Recommend(context.Background(), model.Request{RiskProfile: model.ProfileModerate, Amount: 1000})

	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, res.FallbackUsed)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, "unknown", res.MarketSentiment)
}

func TestRecommend_InvalidProfileFallsBackToModerate(t *testing.T) {
	mock := gateway.NewMockProvider()
	mock.Pools = []model.PoolRecord{healthyPool()}
	mock.Conditions = model.MarketConditions{GasPriceGwei: 30, Volatility: 0.3}

	cap := &captureRecorder{}
	adv := newTestAdvisor(t, mock, nil, cap)
	res := adv.Recommend(context.Background(), model.Request{RiskProfile: "yolo", Amount: 500})

	require.NotEmpty(t, res.Suggestions)
	require.Len(t, cap.snapshots, 1)
	assert.Equal(t, model.ProfileModerate, cap.snapshots[0].Profile)
}

func TestRecommend_RecordsSnapshot(t *testing.T) {
	mock := gateway.NewMockProvider()
	mock.Pools = []model.PoolRecord{healthyPool()}
	mock.Sentiments["ETH"] = 0.6
	mock.Sentiments["USDC"] = 0.6
	mock.Prices["ETH"] = model.TokenPrice{Symbol: "ETH", PriceUSD: 3000, PercentChange24h: 5}
	mock.Conditions = model.MarketConditions{GasPriceGwei: 30, Volatility: 0.3}

	cap := &captureRecorder{}
	adv := newTestAdvisor(t, mock, nil, cap)
	adv.Recommend(context.Background(), model.Request{RiskProfile: model.ProfileAggressive, Amount: 1000})

	require.Len(t, cap.snapshots, 1)
	snap := cap.snapshots[0]
	assert.NotEmpty(t, snap.RequestID)
	assert.Equal(t, model.ProfileAggressive, snap.Profile)
	assert.Equal(t, 1000.0, snap.Amount)
	assert.False(t, snap.FallbackUsed)
	assert.Len(t, snap.Suggestions, 1)
}

func TestSubmitFeedback_ProfitableExit(t *testing.T) {
	agent, memory := newTestAgent(t)
	mock := gateway.NewMockProvider()
	mock.Pools = []model.PoolRecord{healthyPool()}
	cap := &captureRecorder{}
	adv := newTestAdvisor(t, mock, agent, cap)

	sugg := model.ScoredPool{Pool: healthyPool(), RawScore: 0.7}
	sugg.Features.Sentiment = 0.8
	id := adv.TrackPosition(sugg, 1000)
	require.NotEmpty(t, id)
	require.Len(t, adv.OpenPositions(), 1)

	before := memory.Len()
	exit := 1200.0
	require.NoError(t, adv.SubmitFeedback(id, 5, &exit))

	// Exactly one experience is appended for one feedback event.
	assert.Equal(t, before+1, memory.Len())
	assert.Empty(t, adv.OpenPositions())

	require.Len(t, cap.feedback, 1)
	evt := cap.feedback[0]
	assert.Equal(t, "realized", evt.Kind)
	assert.Equal(t, 5, evt.Rating)
	// 20% exit profit with a top rating lands well into positive territory.
	assert.Greater(t, evt.Reward, 0.3)
	assert.LessOrEqual(t, evt.Reward, 1.0)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	agent, _ := newTestAgent(t)
	adv := newTestAdvisor(t, gateway.NewMockProvider(), agent, recorder.NewNoopRecorder())

	assert.Error(t, adv.SubmitFeedback("missing", 3, nil))
	assert.Error(t, adv.SubmitFeedback("missing", 0, nil))
	assert.Error(t, adv.SubmitFeedback("missing", 6, nil))
}

func TestEvaluateOpenPositions_AppliesUnrealizedFeedback(t *testing.T) {
	agent, memory := newTestAgent(t)
	mock := gateway.NewMockProvider()
	mock.Pools = []model.PoolRecord{healthyPool()}
	cap := &captureRecorder{}
	adv := newTestAdvisor(t, mock, agent, cap)

	sugg := model.ScoredPool{Pool: healthyPool(), RawScore: 0.7}
	adv.TrackPosition(sugg, 1000)

	before := memory.Len()
	adv.EvaluateOpenPositions(context.Background())

	assert.Equal(t, before+1, memory.Len())
	// Position stays open after an unrealized pass.
	assert.Len(t, adv.OpenPositions(), 1)
	require.Len(t, cap.feedback, 1)
	assert.Equal(t, "unrealized", cap.feedback[0].Kind)
}
