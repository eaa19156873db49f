package learner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"YieldRadar/internal/model"
)

// Actions the agent can recommend for a candidate.
const (
	ActionSkip = iota
	ActionMonitor
	ActionInvest

	ActionCount = 3
)

// ErrInsufficientData signals that the replay buffer holds fewer
// experiences than one training batch. Callers skip the step silently.
var ErrInsufficientData = errors.New("learner: not enough experiences to train")

// Config holds the agent hyper-parameters. Zero values take defaults.
type Config struct {
	Epsilon      float64 `yaml:"epsilon"`
	EpsilonDecay float64 `yaml:"epsilon_decay"`
	EpsilonFloor float64 `yaml:"epsilon_floor"`
	LearningRate float64 `yaml:"learning_rate"`
	Discount     float64 `yaml:"discount"`
	BatchSize    int     `yaml:"batch_size"`
}

func (c *Config) applyDefaults() {
	if c.Epsilon <= 0 {
		c.Epsilon = 0.2
	}
	if c.EpsilonDecay <= 0 {
		c.EpsilonDecay = 0.995
	}
	if c.EpsilonFloor <= 0 {
		c.EpsilonFloor = 0.01
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.01
	}
	if c.Discount <= 0 {
		c.Discount = 0.95
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 8
	}
}

// agentState is the persisted form of the learned weights. Persisting the
// matrix alongside the replay buffer keeps learning across restarts.
type agentState struct {
	Weights    [][]float64 `json:"weights"`
	Epsilon    float64     `json:"epsilon"`
	TrainSteps int         `json:"train_steps"`
}

// Agent selects actions epsilon-greedily over a linear value approximation
// and trains from replayed experiences. The random source is injected so
// exploration and weight initialization are reproducible.
type Agent struct {
	mu         sync.Mutex
	weights    [][]float64 // FeatureCount x ActionCount
	epsilon    float64
	trainSteps int
	cfg        Config
	rng        *rand.Rand
	memory     *ReplayMemory
	path       string
	log        zerolog.Logger
}

// NewAgent creates an Agent, restoring weights from path when present and
// otherwise initializing them randomly from rng.
func NewAgent(cfg Config, memory *ReplayMemory, rng *rand.Rand, path string, log zerolog.Logger) (*Agent, error) {
	cfg.applyDefaults()
	a := &Agent{cfg: cfg, epsilon: cfg.Epsilon, rng: rng, memory: memory, path: path, log: log}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var st agentState
			if err := json.Unmarshal(data, &st); err != nil {
				return nil, fmt.Errorf("parse weights file: %w", err)
			}
			if len(st.Weights) == model.FeatureCount {
				a.weights = st.Weights
				a.epsilon = st.Epsilon
				a.trainSteps = st.TrainSteps
				log.Info().Int("train_steps", st.TrainSteps).Float64("epsilon", st.Epsilon).Msg("learned weights restored")
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read weights file: %w", err)
		}
	}

	if a.weights == nil {
		a.weights = make([][]float64, model.FeatureCount)
		for i := range a.weights {
			a.weights[i] = make([]float64, ActionCount)
			for j := range a.weights[i] {
				a.weights[i][j] = (rng.Float64() - 0.5) * 0.1
			}
		}
	}
	return a, nil
}

// qValues computes dot(state, column) for every action.
func (a *Agent) qValues(state []float64) [ActionCount]float64 {
	var q [ActionCount]float64
	for j := 0; j < ActionCount; j++ {
		for i, s := range state {
			q[j] += s * a.weights[i][j]
		}
	}
	return q
}

// SelectAction chooses an action for state: random with probability
// epsilon, otherwise the argmax of the approximated values.
func (a *Agent) SelectAction(state []float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rng.Float64() < a.epsilon {
		return a.rng.Intn(ActionCount)
	}
	q := a.qValues(state)
	best := 0
	for j := 1; j < ActionCount; j++ {
		if q[j] > q[best] {
			best = j
		}
	}
	return best
}

// Confidence reports max|q| over actions divided by the sum of |q| over all
// actions, or 0 when the sum is 0. Implements scoring.ConfidenceScorer. A
// nil agent reports 0, so a nil *Agent is a valid scorer.
func (a *Agent) Confidence(state []float64) float64 {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	q := a.qValues(state)
	var maxAbs, sumAbs float64
	for _, v := range q {
		abs := math.Abs(v)
		sumAbs += abs
		if abs > maxAbs {
			maxAbs = abs
		}
	}
	if sumAbs == 0 {
		return 0
	}
	return maxAbs / sumAbs
}

// Record stores one experience and runs a training step. A step on an
// underfilled buffer is skipped silently.
func (a *Agent) Record(exp model.Experience) {
	a.memory.Add(exp)
	if err := a.Train(); err != nil && !errors.Is(err, ErrInsufficientData) {
		a.log.Error().Err(err).Msg("training step failed")
	}
}

// Train samples one batch from replay memory and applies the update rule:
// target = reward (+ discounted max next-state value unless terminal),
// weights[:,action] += lr · (target − prediction) · state. Epsilon decays
// multiplicatively toward its floor after every step.
func (a *Agent) Train() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.memory.Len() < a.cfg.BatchSize {
		return ErrInsufficientData
	}
	batch := a.memory.Sample(a.cfg.BatchSize, a.rng)
	if batch == nil {
		return ErrInsufficientData
	}

	for _, exp := range batch {
		if len(exp.State) != model.FeatureCount || exp.Action < 0 || exp.Action >= ActionCount {
			continue
		}
		target := exp.Reward
		if !exp.Terminal && len(exp.NextState) == model.FeatureCount {
			next := a.qValues(exp.NextState)
			maxNext := next[0]
			for _, v := range next[1:] {
				if v > maxNext {
					maxNext = v
				}
			}
			target += a.cfg.Discount * maxNext
		}
		predicted := 0.0
		for i, s := range exp.State {
			predicted += s * a.weights[i][exp.Action]
		}
		delta := a.cfg.LearningRate * (target - predicted)
		for i, s := range exp.State {
			a.weights[i][exp.Action] += delta * s
		}
	}

	a.epsilon = math.Max(a.cfg.EpsilonFloor, a.epsilon*a.cfg.EpsilonDecay)
	a.trainSteps++

	if a.path != "" && a.trainSteps%saveEvery == 0 {
		if err := a.saveLocked(); err != nil {
			a.log.Error().Err(err).Msg("failed to persist learned weights")
		}
	}
	return nil
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.epsilon
}

// TrainSteps returns how many training steps have run.
func (a *Agent) TrainSteps() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trainSteps
}

// Flush persists the learned weights immediately.
func (a *Agent) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.path == "" {
		return nil
	}
	return a.saveLocked()
}

func (a *Agent) saveLocked() error {
	data, err := json.Marshal(agentState{Weights: a.weights, Epsilon: a.epsilon, TrainSteps: a.trainSteps})
	if err != nil {
		return err
	}
	return atomicWrite(a.path, data)
}
