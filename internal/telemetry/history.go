package telemetry

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
)

// DefaultHistoryPath returns the default history database path
// (~/.scoutmcp/telemetry.db). Falls back to the temp directory if the
// home directory is unavailable.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".scoutmcp", "telemetry.db")
	}
	return filepath.Join(home, ".scoutmcp", "telemetry.db")
}

// Totals summarizes the whole history table.
type Totals struct {
	Searches  int64            `json:"searches"`
	ByOutcome map[string]int64 `json:"by_outcome"`
}

// History persists one row per search in a local SQLite database.
//
// Writes run through a circuit breaker: after repeated failures (disk
// full, locked database) recording fails fast instead of stalling every
// search on a broken dependency.
type History struct {
	db      *sql.DB
	path    string
	breaker *scouterrors.CircuitBreaker
	logger  *slog.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryLogger sets the logger for open/close traces.
func WithHistoryLogger(logger *slog.Logger) HistoryOption {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// OpenHistory opens (and if needed creates) the history database at path.
// Pass ":memory:" for an ephemeral database.
func OpenHistory(path string, opts ...HistoryOption) (*History, error) {
	h := &History{
		path:    path,
		breaker: scouterrors.NewCircuitBreaker("telemetry-history"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, scouterrors.New(scouterrors.ErrCodeTelemetry,
				fmt.Sprintf("failed to create telemetry directory: %s", filepath.Dir(path)), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry,
			fmt.Sprintf("failed to open telemetry database: %s", path), err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Set pragmas via statements; DSN params may be ignored by modernc.org/sqlite.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to set pragma", err)
		}
	}

	if err := initHistorySchema(db); err != nil {
		_ = db.Close()
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to initialize telemetry schema", err)
	}

	h.db = db
	h.logger.Debug("telemetry history opened", slog.String("path", path))
	return h, nil
}

// initHistorySchema creates the searches table if it doesn't exist.
func initHistorySchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TIMESTAMP NOT NULL,
		directory TEXT NOT NULL,
		keyword TEXT NOT NULL,
		outcome TEXT NOT NULL,
		found INTEGER NOT NULL DEFAULT 0,
		indexed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		hits INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_searches_ts ON searches(ts DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create telemetry schema: %w", err)
	}
	return nil
}

// Record appends one search to the history.
//
// Failures come back as warning-severity telemetry errors for the caller
// to log; they must never fail the search itself. While the breaker is
// open Record fails fast without touching the database.
func (h *History) Record(event Event) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	err := h.breaker.Execute(func() error {
		_, execErr := h.db.Exec(`
			INSERT INTO searches (ts, directory, keyword, outcome, found, indexed, skipped, hits, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, ts, event.Directory, event.Keyword, event.Outcome,
			event.Found, event.Indexed, event.Skipped, event.Hits,
			event.Duration.Milliseconds())
		return execErr
	})
	if err != nil {
		return scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to record search", err)
	}
	return nil
}

// Recent returns the most recent searches, newest first.
func (h *History) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := h.db.Query(`
		SELECT ts, directory, keyword, outcome, found, indexed, skipped, hits, duration_ms
		FROM searches
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to query recent searches", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var durationMS int64
		if err := rows.Scan(&e.Timestamp, &e.Directory, &e.Keyword, &e.Outcome,
			&e.Found, &e.Indexed, &e.Skipped, &e.Hits, &durationMS); err != nil {
			return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to scan search row", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to read search rows", err)
	}
	return events, nil
}

// Totals returns the all-time search count broken down by outcome.
func (h *History) Totals() (*Totals, error) {
	rows, err := h.db.Query(`
		SELECT outcome, COUNT(*) AS total
		FROM searches
		GROUP BY outcome
	`)
	if err != nil {
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to query totals", err)
	}
	defer rows.Close()

	totals := &Totals{ByOutcome: make(map[string]int64)}
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to scan totals row", err)
		}
		totals.ByOutcome[outcome] = count
		totals.Searches += count
	}
	if err := rows.Err(); err != nil {
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to read totals rows", err)
	}
	return totals, nil
}

// TopKeywords returns the most frequent keywords, ties broken
// alphabetically.
func (h *History) TopKeywords(limit int) ([]KeywordCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := h.db.Query(`
		SELECT keyword, COUNT(*) AS total
		FROM searches
		GROUP BY keyword
		ORDER BY total DESC, keyword ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to query top keywords", err)
	}
	defer rows.Close()

	var keywords []KeywordCount
	for rows.Next() {
		var kc KeywordCount
		if err := rows.Scan(&kc.Keyword, &kc.Count); err != nil {
			return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to scan keyword row", err)
		}
		keywords = append(keywords, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, scouterrors.New(scouterrors.ErrCodeTelemetry, "failed to read keyword rows", err)
	}
	return keywords, nil
}

// BreakerState exposes the write breaker state for diagnostics.
func (h *History) BreakerState() scouterrors.State {
	return h.breaker.State()
}

// Path returns the database path.
func (h *History) Path() string {
	return h.path
}

// Close releases the database handle.
func (h *History) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}
