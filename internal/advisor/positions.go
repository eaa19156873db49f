package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"YieldRadar/internal/learner"
	"YieldRadar/internal/model"
	"YieldRadar/internal/recorder"
)

// Position is a tracked entry awaiting feedback.
type Position struct {
	ID         string
	Pool       model.PoolRecord
	State      []float64
	Action     int
	Amount     float64
	EntryScore float64
	EnteredAt  time.Time
}

// TrackPosition registers an entered position so later feedback can be
// attributed to it. Returns the position ID.
func (a *Advisor) TrackPosition(sugg model.ScoredPool, amount float64) string {
	state := sugg.Features.Values()
	action := learner.ActionInvest
	if a.agent != nil {
		action = a.agent.SelectAction(state)
	}

	pos := &Position{
		ID:         uuid.NewString(),
		Pool:       sugg.Pool,
		State:      state,
		Action:     action,
		Amount:     amount,
		EntryScore: sugg.RawScore,
		EnteredAt:  a.now(),
	}

	a.mu.Lock()
	a.positions[pos.ID] = pos
	a.mu.Unlock()

	a.log.Info().Str("position", pos.ID).Str("pool", sugg.Pool.ID).Float64("amount", amount).Msg("position tracked")
	return pos.ID
}

// OpenPositions returns a snapshot of currently tracked positions.
func (a *Advisor) OpenPositions() []Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Position, 0, len(a.positions))
	for _, p := range a.positions {
		out = append(out, *p)
	}
	return out
}

// EvaluateOpenPositions applies unrealized feedback to every tracked
// position: the reward blends the entry score with an APR-derived profit
// estimate for the elapsed holding time. Called periodically by the
// scheduler.
func (a *Advisor) EvaluateOpenPositions(ctx context.Context) {
	if a.agent == nil {
		return
	}

	a.mu.Lock()
	open := make([]*Position, 0, len(a.positions))
	for _, p := range a.positions {
		open = append(open, p)
	}
	a.mu.Unlock()

	for _, pos := range open {
		days := a.now().Sub(pos.EnteredAt).Hours() / 24
		apr := pos.Pool.APR24h
		if detail, _, err := a.gw.PoolDetail(ctx, pos.Pool.ID); err == nil {
			apr = detail.APR24h
		}

		reward := learner.UnrealizedReward(pos.EntryScore, learner.EstimatedProfitRatio(apr, days))
		a.agent.Record(model.Experience{
			State:     pos.State,
			Action:    pos.Action,
			Reward:    reward,
			NextState: pos.State,
			Terminal:  false,
		})

		if err := a.rec.RecordFeedback(&recorder.FeedbackEvent{
			PositionID: pos.ID,
			PoolID:     pos.Pool.ID,
			Kind:       "unrealized",
			Reward:     reward,
			Epsilon:    a.agent.Epsilon(),
		}); err != nil {
			a.log.Error().Err(err).Msg("failed to record unrealized feedback")
		}
	}
}

// SubmitFeedback applies user-rated feedback (rating on a 1-5 scale) to a
// tracked position and closes it. When exitAmount is non-nil the base
// reward uses the actual exit profit ratio instead of the APR estimate.
func (a *Advisor) SubmitFeedback(positionID string, rating int, exitAmount *float64) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("advisor: rating must be 1-5, got %d", rating)
	}

	a.mu.Lock()
	pos, ok := a.positions[positionID]
	if ok {
		delete(a.positions, positionID)
	}
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("advisor: unknown position %q", positionID)
	}

	days := a.now().Sub(pos.EnteredAt).Hours() / 24
	base := learner.UnrealizedReward(pos.EntryScore, learner.EstimatedProfitRatio(pos.Pool.APR24h, days))
	if exitAmount != nil && pos.Amount > 0 {
		base = learner.ProfitRatio(pos.Amount, *exitAmount)
	}
	reward := learner.RealizedReward(base, rating)

	if a.agent != nil {
		a.agent.Record(model.Experience{
			State:     pos.State,
			Action:    pos.Action,
			Reward:    reward,
			NextState: pos.State,
			Terminal:  true,
		})
	}

	epsilon := 0.0
	if a.agent != nil {
		epsilon = a.agent.Epsilon()
	}
	if err := a.rec.RecordFeedback(&recorder.FeedbackEvent{
		PositionID: pos.ID,
		PoolID:     pos.Pool.ID,
		Kind:       "realized",
		Rating:     rating,
		Reward:     reward,
		Epsilon:    epsilon,
	}); err != nil {
		a.log.Error().Err(err).Msg("failed to record realized feedback")
	}

	a.log.Info().Str("position", pos.ID).Int("rating", rating).Float64("reward", reward).Msg("feedback applied")
	return nil
}
