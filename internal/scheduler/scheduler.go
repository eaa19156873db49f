package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"YieldRadar/internal/advisor"
	"YieldRadar/internal/learner"
)

// Scheduler manages the periodic tasks of the feedback loop: unrealized
// feedback evaluation for open positions and flushing the learner state to
// disk.
type Scheduler struct {
	Cron    *cron.Cron
	Advisor *advisor.Advisor
	Memory  *learner.ReplayMemory
	Agent   *learner.Agent
	log     zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(adv *advisor.Advisor, memory *learner.ReplayMemory, agent *learner.Agent, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Advisor: adv,
		Memory:  memory,
		Agent:   agent,
		log:     log,
	}
}

// RegisterAll registers the feedback and flush tasks.
func (s *Scheduler) RegisterAll(feedbackCron, flushCron string) error {
	if _, err := s.Cron.AddFunc(feedbackCron, s.feedbackTask); err != nil {
		return fmt.Errorf("register feedback task: %w", err)
	}
	if _, err := s.Cron.AddFunc(flushCron, s.flushTask); err != nil {
		return fmt.Errorf("register flush task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunFeedbackNow executes the unrealized-feedback task immediately.
func (s *Scheduler) RunFeedbackNow() {
	s.feedbackTask()
}

func (s *Scheduler) feedbackTask() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.log.Info().Msg("evaluating open positions")
	s.Advisor.EvaluateOpenPositions(ctx)
}

func (s *Scheduler) flushTask() {
	if s.Memory != nil {
		if err := s.Memory.Flush(); err != nil {
			s.log.Error().Err(err).Msg("replay flush failed")
		}
	}
	if s.Agent != nil {
		if err := s.Agent.Flush(); err != nil {
			s.log.Error().Err(err).Msg("weights flush failed")
		}
	}
}
