package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Attempt is one provider call made while answering a chat request.
// Transcript content is never stored.
type Attempt struct {
	ID        int64
	CreatedAt time.Time
	RequestID string
	SessionID string
	Provider  string
	Model     string
	Outcome   string
	Kind      string
	Latency   time.Duration
	Error     string
}

// AttemptLog persists attempts to a sqlite database.
type AttemptLog struct {
	db *sql.DB
}

// OpenAttemptLog opens (creating if needed) the attempt log at dbPath.
func OpenAttemptLog(dbPath string) (*AttemptLog, error) {
	// 0700 - user-only access
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create attempt log directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// One writer at a time; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)

	log := &AttemptLog{db: db}

	if err := log.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return log, nil
}

func (l *AttemptLog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		request_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		latency_ms INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON attempts(created_at);
	CREATE INDEX IF NOT EXISTS idx_attempts_provider ON attempts(provider);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Record inserts one attempt. A zero CreatedAt is stamped with the current time.
func (l *AttemptLog) Record(ctx context.Context, a Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	insertSQL := `
		INSERT INTO attempts
			(created_at, request_id, session_id, provider, model, outcome, kind, latency_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.ExecContext(ctx, insertSQL,
		a.CreatedAt.UTC(),
		a.RequestID,
		a.SessionID,
		a.Provider,
		a.Model,
		a.Outcome,
		a.Kind,
		a.Latency.Milliseconds(),
		a.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (l *AttemptLog) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, created_at, request_id, session_id, provider, model, outcome, kind, latency_ms, error
		FROM attempts
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var latencyMS int64
		err := rows.Scan(
			&a.ID,
			&a.CreatedAt,
			&a.RequestID,
			&a.SessionID,
			&a.Provider,
			&a.Model,
			&a.Outcome,
			&a.Kind,
			&latencyMS,
			&a.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.Latency = time.Duration(latencyMS) * time.Millisecond
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// OutcomeCounts returns the number of attempts per provider and outcome.
func (l *AttemptLog) OutcomeCounts(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT provider, outcome, COUNT(*) FROM attempts GROUP BY provider, outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var provider, outcome string
		var n int
		if err := rows.Scan(&provider, &outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		if counts[provider] == nil {
			counts[provider] = make(map[string]int)
		}
		counts[provider][outcome] = n
	}

	return counts, rows.Err()
}

func (l *AttemptLog) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
