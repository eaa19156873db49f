package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recommendations (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			request_id       TEXT NOT NULL,
			profile          TEXT,
			amount           REAL,
			market_sentiment TEXT,
			fallback_used    INTEGER,
			rl_powered       INTEGER,
			suggestion_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reco_ts ON recommendations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS suggestions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id   TEXT NOT NULL,
			rank         INTEGER,
			pool_id      TEXT,
			token0       TEXT,
			token1       TEXT,
			raw_score    REAL,
			confidence   REAL,
			timing_score REAL,
			timing_band  TEXT,
			amount       REAL,
			weight       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sugg_req ON suggestions(request_id)`,

		`CREATE TABLE IF NOT EXISTS feedback_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			position_id TEXT,
			pool_id     TEXT,
			kind        TEXT,
			rating      INTEGER,
			reward      REAL,
			epsilon     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fb_ts ON feedback_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRecommendation(snap *RecommendationSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	_, err := r.db.Exec(`INSERT INTO recommendations
		(timestamp, request_id, profile, amount, market_sentiment, fallback_used, rl_powered, suggestion_count)
		VALUES (?,?,?,?,?,?,?,?)`,
		now, snap.RequestID, string(snap.Profile), snap.Amount, snap.MarketSentiment,
		boolInt(snap.FallbackUsed), boolInt(snap.RLPowered), len(snap.Suggestions),
	)
	if err != nil {
		return err
	}

	amounts := make(map[string]struct{ amount, weight float64 }, len(snap.Positions))
	for _, p := range snap.Positions {
		amounts[p.Pool.ID] = struct{ amount, weight float64 }{p.Amount, p.Weight}
	}
	for rank, s := range snap.Suggestions {
		pos := amounts[s.Pool.ID]
		if _, err := r.db.Exec(`INSERT INTO suggestions
			(request_id, rank, pool_id, token0, token1, raw_score, confidence, timing_score, timing_band, amount, weight)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			snap.RequestID, rank+1, s.Pool.ID, s.Pool.Token0, s.Pool.Token1,
			s.RawScore, s.Confidence, s.TimingScore, string(s.TimingBand), pos.amount, pos.weight,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFeedback(evt *FeedbackEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO feedback_events
		(timestamp, position_id, pool_id, kind, rating, reward, epsilon)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.PositionID, evt.PoolID, evt.Kind, evt.Rating, evt.Reward, evt.Epsilon,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
