package main

import (
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"YieldRadar/internal/advisor"
	"YieldRadar/internal/config"
	"YieldRadar/internal/gateway"
	"YieldRadar/internal/learner"
	"YieldRadar/internal/recorder"
	"YieldRadar/internal/scheduler"
	"YieldRadar/internal/scoring"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Info().Msg("YieldRadar starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Init data gateway
	provider := gateway.NewHTTPProvider(cfg.DataSource.BaseURL, cfg.DataSource.APIKey,
		time.Duration(cfg.DataSource.TimeoutSeconds)*time.Second)
	gw := gateway.New(provider, gateway.Options{
		TTL:               time.Duration(cfg.DataSource.CacheTTLSeconds) * time.Second,
		Timeout:           time.Duration(cfg.DataSource.TimeoutSeconds) * time.Second,
		RateWindows:       cfg.RateWindows(),
		DefaultRateWindow: time.Duration(cfg.DataSource.DefaultRateWindowSeconds) * time.Second,
	}, log)
	log.Info().Str("provider", provider.Name()).Str("base_url", cfg.DataSource.BaseURL).Msg("data gateway ready")

	// Init learner
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	memory, err := learner.NewReplayMemory(cfg.Storage.ReplayCapacity, cfg.Storage.ReplayPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init replay memory")
	}
	agent, err := learner.NewAgent(cfg.Learner, memory, rng, cfg.Storage.WeightsPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init agent")
	}

	// Init scoring engine
	engine, err := scoring.NewEngine(cfg.ProfileWeights(), agent)
	if err != nil {
		log.Fatal().Err(err).Msg("init scoring engine")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Storage.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init advisor
	adv := advisor.New(gw, engine, agent, rec, advisor.Options{
		Filter: gateway.PoolFilter{
			Source:    cfg.Filter.Source,
			Category:  cfg.Filter.Category,
			MinTVL:    cfg.Filter.MinTVL,
			MinAPR:    cfg.Filter.MinAPR,
			MinVolume: cfg.Filter.MinVolume,
			PerPage:   cfg.Filter.PerPage,
			SortBy:    cfg.Filter.SortBy,
		},
	}, log)

	// Init scheduler
	sched := scheduler.NewScheduler(adv, memory, agent, log)
	if err := sched.RegisterAll(cfg.Schedule.FeedbackCron, cfg.Schedule.FlushCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	log.Info().Msg("YieldRadar is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, flushing state")
	if err := memory.Flush(); err != nil {
		log.Error().Err(err).Msg("replay flush failed")
	}
	if err := agent.Flush(); err != nil {
		log.Error().Err(err).Msg("weights flush failed")
	}
	log.Info().Msg("YieldRadar stopped")
}
