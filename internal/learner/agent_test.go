package learner

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T, cfg Config, seed int64) (*Agent, *ReplayMemory) {
	t.Helper()
	m, err := NewReplayMemory(100, "", zerolog.Nop())
	require.NoError(t, err)
	a, err := NewAgent(cfg, m, rand.New(rand.NewSource(seed)), "", zerolog.Nop())
	require.NoError(t, err)
	return a, m
}

func TestSelectAction_Deterministic(t *testing.T) {
	state := []float64{0.4, 0.8, 0.8, 0.1, 0.8, 0.9, 0.5, 0.55}

	a1, _ := newTestAgent(t, Config{}, 42)
	a2, _ := newTestAgent(t, Config{}, 42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a1.SelectAction(state), a2.SelectAction(state))
	}
}

func TestSelectAction_GreedyWithoutExploration(t *testing.T) {
	a, _ := newTestAgent(t, Config{Epsilon: 1e-12}, 7)
	state := []float64{1, 0, 0, 0, 0, 0, 0, 0}

	// Force a known argmax.
	a.weights[0] = []float64{0.1, 0.9, 0.2}
	assert.Equal(t, ActionMonitor, a.SelectAction(state))
}

func TestTrain_SkipsOnInsufficientData(t *testing.T) {
	a, m := newTestAgent(t, Config{BatchSize: 8}, 1)
	for i := 0; i < 7; i++ {
		m.Add(exp(0.5))
	}
	assert.ErrorIs(t, a.Train(), ErrInsufficientData)
	assert.Equal(t, 0, a.TrainSteps())
}

func TestTrain_UpdatesWeightsAndDecaysEpsilon(t *testing.T) {
	a, m := newTestAgent(t, Config{Epsilon: 0.2, EpsilonDecay: 0.9, BatchSize: 4}, 1)
	for i := 0; i < 8; i++ {
		m.Add(exp(1.0))
	}

	before := a.weights[0][ActionInvest]
	require.NoError(t, a.Train())

	assert.NotEqual(t, before, a.weights[0][ActionInvest])
	assert.InDelta(t, 0.18, a.Epsilon(), 1e-9)
	assert.Equal(t, 1, a.TrainSteps())
}

func TestTrain_EpsilonNeverBelowFloor(t *testing.T) {
	a, m := newTestAgent(t, Config{Epsilon: 0.05, EpsilonDecay: 0.5, EpsilonFloor: 0.02, BatchSize: 2}, 1)
	for i := 0; i < 4; i++ {
		m.Add(exp(0.1))
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, a.Train())
	}
	assert.Equal(t, 0.02, a.Epsilon())
}

func TestConfidence_NilAgentReportsZero(t *testing.T) {
	var a *Agent
	assert.Zero(t, a.Confidence([]float64{1, 0, 0, 0, 0, 0, 0, 0}))
}

func TestConfidence_ZeroWhenAllValuesZero(t *testing.T) {
	a, _ := newTestAgent(t, Config{}, 1)
	for i := range a.weights {
		for j := range a.weights[i] {
			a.weights[i][j] = 0
		}
	}
	assert.Zero(t, a.Confidence([]float64{1, 1, 1, 1, 1, 1, 1, 1}))
}

func TestConfidence_BoundedAndOrdered(t *testing.T) {
	a, _ := newTestAgent(t, Config{}, 3)
	state := []float64{0.4, 0.8, 0.8, 0.1, 0.8, 0.9, 0.5, 0.55}

	c := a.Confidence(state)
	// With three actions the normalized max-|q| share lies in [1/3, 1].
	assert.GreaterOrEqual(t, c, 1.0/3-1e-9)
	assert.LessOrEqual(t, c, 1.0)
}

func TestRecord_AddsExactlyOneExperience(t *testing.T) {
	a, m := newTestAgent(t, Config{BatchSize: 50}, 1)
	before := m.Len()
	a.Record(exp(0.44))
	assert.Equal(t, before+1, m.Len())
}

func TestAgent_WeightsSurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	m, err := NewReplayMemory(100, "", zerolog.Nop())
	require.NoError(t, err)

	a, err := NewAgent(Config{Epsilon: 0.2, EpsilonDecay: 0.9, BatchSize: 2}, m, rand.New(rand.NewSource(9)), path, zerolog.Nop())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		m.Add(exp(0.8))
	}
	require.NoError(t, a.Train())
	require.NoError(t, a.Flush())

	restored, err := NewAgent(Config{}, m, rand.New(rand.NewSource(1)), path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, a.weights, restored.weights)
	assert.Equal(t, a.Epsilon(), restored.Epsilon())
	assert.Equal(t, 1, restored.TrainSteps())
}
