package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"YieldRadar/internal/learner"
	"YieldRadar/internal/model"
	"YieldRadar/internal/scoring"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL                  string         `yaml:"base_url"`
		APIKey                   string         `yaml:"api_key"`
		TimeoutSeconds           int            `yaml:"timeout_seconds"`
		CacheTTLSeconds          int            `yaml:"cache_ttl_seconds"`
		RateWindowSeconds        map[string]int `yaml:"rate_window_seconds"`
		DefaultRateWindowSeconds int            `yaml:"default_rate_window_seconds"`
	} `yaml:"data_source"`
	Filter struct {
		Source    string  `yaml:"source"`
		Category  string  `yaml:"category"`
		MinTVL    float64 `yaml:"min_tvl"`
		MinAPR    float64 `yaml:"min_apr"`
		MinVolume float64 `yaml:"min_volume"`
		PerPage   int     `yaml:"per_page"`
		SortBy    string  `yaml:"sort_by"`
	} `yaml:"filter"`
	Scoring struct {
		Weights map[string]scoring.Weights `yaml:"weights"`
	} `yaml:"scoring"`
	Learner learner.Config `yaml:"learner"`
	Storage struct {
		ReplayPath     string `yaml:"replay_path"`
		ReplayCapacity int    `yaml:"replay_capacity"`
		WeightsPath    string `yaml:"weights_path"`
		SQLitePath     string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Schedule struct {
		FeedbackCron string `yaml:"feedback_cron"`
		FlushCron    string `yaml:"flush_cron"`
	} `yaml:"schedule"`
	Seed int64 `yaml:"seed"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("POOLS_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("POOLS_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("REPLAY_PATH"); v != "" {
		cfg.Storage.ReplayPath = v
	}
	if v := os.Getenv("WEIGHTS_PATH"); v != "" {
		cfg.Storage.WeightsPath = v
	}
	if v := os.Getenv("FEEDBACK_CRON"); v != "" {
		cfg.Schedule.FeedbackCron = v
	}
	if v := os.Getenv("RL_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}

	// Defaults
	if cfg.DataSource.TimeoutSeconds <= 0 {
		cfg.DataSource.TimeoutSeconds = 10
	}
	if cfg.DataSource.CacheTTLSeconds <= 0 {
		cfg.DataSource.CacheTTLSeconds = 300
	}
	if cfg.DataSource.DefaultRateWindowSeconds <= 0 {
		cfg.DataSource.DefaultRateWindowSeconds = 30
	}
	if cfg.DataSource.RateWindowSeconds == nil {
		cfg.DataSource.RateWindowSeconds = map[string]int{
			"pools":        60,
			"pool_detail":  60,
			"pool_history": 120,
			"simulate":     120,
			"sentiment":    60,
			"price":        10,
			"market":       30,
		}
	}
	if cfg.Filter.MinTVL == 0 {
		cfg.Filter.MinTVL = 100000
	}
	if cfg.Filter.PerPage == 0 {
		cfg.Filter.PerPage = 50
	}
	if cfg.Filter.SortBy == "" {
		cfg.Filter.SortBy = "apr"
	}
	if cfg.Storage.ReplayPath == "" {
		cfg.Storage.ReplayPath = "data/replay.json"
	}
	if cfg.Storage.ReplayCapacity == 0 {
		cfg.Storage.ReplayCapacity = 1000
	}
	if cfg.Storage.WeightsPath == "" {
		cfg.Storage.WeightsPath = "data/weights.json"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/yieldradar.db"
	}
	if cfg.Schedule.FeedbackCron == "" {
		cfg.Schedule.FeedbackCron = "0 0 */6 * * *"
	}
	if cfg.Schedule.FlushCron == "" {
		cfg.Schedule.FlushCron = "0 */5 * * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and the weight tables
// are usable.
func (c *Config) Validate() error {
	if c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required")
	}
	for name, w := range c.Scoring.Weights {
		if !model.RiskProfile(name).Valid() {
			return fmt.Errorf("scoring.weights: unknown profile %q", name)
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("scoring.weights.%s: %w", name, err)
		}
	}
	for endpoint, secs := range c.DataSource.RateWindowSeconds {
		if secs < 0 {
			return fmt.Errorf("data_source.rate_window_seconds.%s must not be negative", endpoint)
		}
	}
	return nil
}

// ProfileWeights converts the configured weight tables to their typed form;
// nil when none are configured so the scoring defaults apply.
func (c *Config) ProfileWeights() map[model.RiskProfile]scoring.Weights {
	if len(c.Scoring.Weights) == 0 {
		return nil
	}
	out := scoring.DefaultWeights()
	for name, w := range c.Scoring.Weights {
		out[model.RiskProfile(name)] = w
	}
	return out
}

// RateWindows converts the configured per-endpoint windows to durations.
func (c *Config) RateWindows() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.DataSource.RateWindowSeconds))
	for endpoint, secs := range c.DataSource.RateWindowSeconds {
		out[endpoint] = time.Duration(secs) * time.Second
	}
	return out
}
