// Package history keeps a per-user log of finished runs in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"testr/internal/config"
	"testr/internal/domain"
)

// Entry is one recorded run.
type Entry struct {
	ID        int64
	StartedAt time.Time
	EndedAt   time.Time
	Status    domain.RunStatus
	Passed    int
	Failed    int
	Skipped   int
	Errors    int
	Args      string
}

// Store records run summaries and lists them back.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at the
// config's per-user path.
func Open(cfg *config.Config) (*Store, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	ended_at   TEXT NOT NULL,
	status     TEXT NOT NULL,
	passed     INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	skipped    INTEGER NOT NULL,
	errors     INTEGER NOT NULL,
	args       TEXT NOT NULL
)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// Record inserts one finished run.
func (s *Store) Record(run domain.Run, spec domain.FilterSpec) error {
	if !run.Status.Terminal() {
		return fmt.Errorf("refusing to record a %s run", run.Status)
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (started_at, ended_at, status, passed, failed, skipped, errors, args)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339),
		run.EndedAt.Format(time.RFC3339),
		string(run.Status),
		run.Counts[domain.VerdictPassed],
		run.Counts[domain.VerdictFailed],
		run.Counts[domain.VerdictSkipped],
		run.Counts[domain.VerdictError],
		strings.Join(spec.BuildArgs(nil), " "),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, ended_at, status, passed, failed, skipped, errors, args
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, ended, status string
		if err := rows.Scan(&e.ID, &started, &ended, &status, &e.Passed, &e.Failed, &e.Skipped, &e.Errors, &e.Args); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.StartedAt, _ = time.Parse(time.RFC3339, started)
		e.EndedAt, _ = time.Parse(time.RFC3339, ended)
		e.Status = domain.RunStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
