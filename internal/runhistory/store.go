// Package runhistory is an optional, purely advisory audit trail of
// JobDriver ticks. It opens a reader/writer SQLite pair the same way the
// teacher's internal/db.Init does (WAL mode, single writer connection,
// multiple read connections) but carries no migration machinery: the
// schema is fixed and created, if missing, by Open.
package runhistory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cronforge/chronod/internal/jobdriver"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS run_history (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	driver_name   TEXT NOT NULL,
	scheduled_for TEXT NOT NULL,
	fired_at      TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_run_history_driver ON run_history(driver_name, fired_at);
`

// RunRecord is one advisory row: a single driver tick's outcome. It is
// never read back to decide what to schedule — only for introspection.
type RunRecord struct {
	RunID        string
	DriverName   string
	ScheduledFor time.Time
	FiredAt      time.Time
	Outcome      jobdriver.Outcome
	ErrorMessage string
}

// Store wraps a reader/writer SQLite pair. It satisfies
// jobdriver.HistoryRecorder.
type Store struct {
	reader *sql.DB
	writer *sql.DB
}

// Open creates (if needed) and opens the run-history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("runhistory: path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	writerDSN := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000&cache=shared&mode=rwc", path)
	writer, err := sql.Open("sqlite3", writerDSN)
	if err != nil {
		return nil, fmt.Errorf("runhistory: open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)
	writer.SetConnMaxLifetime(time.Hour)

	if _, err := writer.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		writer.Close()
		return nil, fmt.Errorf("runhistory: set WAL: %w", err)
	}
	if _, err := writer.Exec(schemaSQL); err != nil {
		writer.Close()
		return nil, fmt.Errorf("runhistory: apply schema: %w", err)
	}

	readerDSN := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000&cache=shared&mode=ro", path)
	reader, err := sql.Open("sqlite3", readerDSN)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("runhistory: open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)
	reader.SetMaxIdleConns(2)
	reader.SetConnMaxLifetime(time.Hour)

	return &Store{reader: reader, writer: writer}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Close closes both connections.
func (s *Store) Close() error {
	var firstErr error
	if err := s.reader.Close(); err != nil {
		firstErr = err
	}
	if err := s.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Record inserts one advisory run row. It satisfies
// jobdriver.HistoryRecorder's signature.
func (s *Store) Record(ctx context.Context, driverName string, scheduledFor, firedAt time.Time, outcome jobdriver.Outcome, runID string, errMsg string) error {
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO run_history (run_id, driver_name, scheduled_for, fired_at, outcome, error_message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, driverName, scheduledFor.UTC().Format(time.RFC3339), firedAt.UTC().Format(time.RFC3339), string(outcome), nullableString(errMsg))
	return err
}

// Recent returns up to limit of driverName's most recent run records,
// newest first.
func (s *Store) Recent(ctx context.Context, driverName string, limit int) ([]RunRecord, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT run_id, driver_name, scheduled_for, fired_at, outcome, COALESCE(error_message, '')
		 FROM run_history WHERE driver_name = ? ORDER BY fired_at DESC LIMIT ?`,
		driverName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var scheduledFor, firedAt, outcome string
		if err := rows.Scan(&rec.RunID, &rec.DriverName, &scheduledFor, &firedAt, &outcome, &rec.ErrorMessage); err != nil {
			return nil, err
		}
		rec.ScheduledFor, err = time.Parse(time.RFC3339, scheduledFor)
		if err != nil {
			return nil, err
		}
		rec.FiredAt, err = time.Parse(time.RFC3339, firedAt)
		if err != nil {
			return nil, err
		}
		rec.Outcome = jobdriver.Outcome(outcome)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
