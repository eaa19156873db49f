package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldRadar/internal/scoring"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.DataSource.TimeoutSeconds)
	assert.Equal(t, 300, cfg.DataSource.CacheTTLSeconds)
	assert.Equal(t, 30, cfg.DataSource.DefaultRateWindowSeconds)
	assert.Equal(t, 60, cfg.DataSource.RateWindowSeconds["sentiment"])
	assert.Equal(t, 10, cfg.DataSource.RateWindowSeconds["price"])
	assert.Equal(t, 1000, cfg.Storage.ReplayCapacity)
	assert.Equal(t, "0 0 */6 * * *", cfg.Schedule.FeedbackCron)
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := writeConfig(t, `
data_source:
  base_url: https://pools.example.com
  timeout_seconds: 5
filter:
  min_tvl: 250000
  sort_by: tvl
learner:
  epsilon: 0.3
seed: 42
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pools.example.com", cfg.DataSource.BaseURL)
	assert.Equal(t, 5, cfg.DataSource.TimeoutSeconds)
	assert.Equal(t, 250000.0, cfg.Filter.MinTVL)
	assert.Equal(t, "tvl", cfg.Filter.SortBy)
	assert.Equal(t, 0.3, cfg.Learner.Epsilon)
	assert.Equal(t, int64(42), cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  base_url: https://pools.example.com
  api_key: from-file
`)
	t.Setenv("POOLS_API_KEY", "from-env")
	t.Setenv("REPLAY_PATH", "/tmp/replay.json")
	t.Setenv("RL_SEED", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, "/tmp/replay.json", cfg.Storage.ReplayPath)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "base_url is required")

	cfg.DataSource.BaseURL = "https://pools.example.com"
	require.NoError(t, cfg.Validate())

	cfg.Scoring.Weights = map[string]scoring.Weights{"degen": {}}
	assert.Error(t, cfg.Validate())

	cfg.Scoring.Weights = nil
	cfg.DataSource.RateWindowSeconds["price"] = -1
	assert.Error(t, cfg.Validate())
}

func TestRateWindows(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	windows := cfg.RateWindows()
	assert.Equal(t, 60*time.Second, windows["pools"])
	assert.Equal(t, 10*time.Second, windows["price"])
}
