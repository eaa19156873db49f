// Package learner implements the online-learning feedback loop: an
// epsilon-greedy agent over a linear value approximation, trained from a
// persisted, bounded experience-replay buffer.
package learner

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"YieldRadar/internal/model"
)

// saveEvery is the insertion cadence at which the buffer is persisted.
const saveEvery = 10

// ReplayMemory is a bounded circular buffer of experiences. Once at
// capacity each insertion evicts exactly the oldest entry. The buffer is
// serialized wholesale to a JSON file every saveEvery insertions using
// write-to-temp-then-rename so a crash mid-write cannot corrupt it, and
// reloaded in full at startup.
type ReplayMemory struct {
	mu       sync.Mutex
	entries  []model.Experience
	capacity int
	inserts  int
	path     string
	log      zerolog.Logger
}

// NewReplayMemory creates a buffer with the given capacity, loading any
// previously persisted experiences from path. An empty path disables
// persistence.
func NewReplayMemory(capacity int, path string, log zerolog.Logger) (*ReplayMemory, error) {
	if capacity <= 0 {
		capacity = 1000
	}
	m := &ReplayMemory{capacity: capacity, path: path, log: log}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	var entries []model.Experience
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse replay file: %w", err)
	}
	if len(entries) > capacity {
		entries = entries[len(entries)-capacity:]
	}
	m.entries = entries
	log.Info().Int("experiences", len(entries)).Msg("replay memory loaded")
	return m, nil
}

// Add appends an experience, evicting the oldest entry when at capacity.
func (m *ReplayMemory) Add(exp model.Experience) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.capacity {
		m.entries = m.entries[1:]
	}
	m.entries = append(m.entries, exp)
	m.inserts++

	if m.path != "" && m.inserts%saveEvery == 0 {
		if err := m.saveLocked(); err != nil {
			m.log.Error().Err(err).Msg("failed to persist replay memory")
		}
	}
}

// Sample returns n experiences drawn uniformly at random, or nil when the
// buffer holds fewer than n.
func (m *ReplayMemory) Sample(n int, rng *rand.Rand) []model.Experience {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) < n {
		return nil
	}
	out := make([]model.Experience, n)
	for i := range out {
		out[i] = m.entries[rng.Intn(len(m.entries))]
	}
	return out
}

// Len returns the current number of stored experiences.
func (m *ReplayMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Flush persists the buffer immediately.
func (m *ReplayMemory) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		return nil
	}
	return m.saveLocked()
}

func (m *ReplayMemory) saveLocked() error {
	data, err := json.Marshal(m.entries)
	if err != nil {
		return err
	}
	return atomicWrite(m.path, data)
}

// atomicWrite writes data to a temporary file in the target directory and
// renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
