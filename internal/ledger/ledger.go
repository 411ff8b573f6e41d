// Package ledger journals pipeline stages to a local sqlite database so
// past runs can be inspected after the fact.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status constants for recorded stages.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS stages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_path    TEXT NOT NULL,
	stage       TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);`

// Entry is one recorded pipeline stage.
type Entry struct {
	ID         int64
	RunPath    string
	Stage      string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the stage is running
}

// Ledger wraps the stage-history database.
type Ledger struct {
	db *sql.DB
}

// DefaultPath returns the default ledger location under the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home dir: %w", err)
	}
	return filepath.Join(home, ".runprep", "ledger.db"), nil
}

// Open opens (creating if necessary) the ledger database at path.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger %s: %w", path, err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Begin records the start of a stage and returns its entry id.
func (l *Ledger) Begin(runPath, stage string) (int64, error) {
	res, err := l.db.Exec(
		`INSERT INTO stages (run_path, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		runPath, stage, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("record stage start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record stage start: %w", err)
	}
	return id, nil
}

// Finish records the outcome of a previously begun stage.
func (l *Ledger) Finish(id int64, status, errMsg string) error {
	_, err := l.db.Exec(
		`UPDATE stages SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("record stage finish: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (l *Ledger) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(
		`SELECT id, run_path, stage, status, error, started_at, finished_at
		 FROM stages ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var finished sql.NullTime
		if err := rows.Scan(&e.ID, &e.RunPath, &e.Stage, &e.Status, &e.Error, &e.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		if finished.Valid {
			e.FinishedAt = finished.Time
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	return entries, nil
}
