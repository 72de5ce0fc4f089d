package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ride-agent/internal/application/port/output"
	"ride-agent/internal/domain/entity"
)

var _ output.RunHistoryPort = (*Store)(nil)

// Store keeps an append-only record of workflow runs in SQLite so failed
// registrations can be diagnosed after the fact.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		outcome TEXT NOT NULL,
		ride_title TEXT,
		ride_date TEXT,
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		artifact_ref TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, rec output.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs(id, started_at, finished_at, outcome, ride_title, ride_date, attempts, last_error, artifact_ref)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt, rec.FinishedAt, string(rec.Outcome),
		rec.RideTitle, rec.RideDate, rec.Attempts, rec.LastError, rec.ArtifactRef,
	)
	if err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]output.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, finished_at, outcome, ride_title, ride_date, attempts, last_error, artifact_ref
FROM runs
ORDER BY started_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer rows.Close()

	var out []output.RunRecord
	for rows.Next() {
		var rec output.RunRecord
		var outcome string
		if err := rows.Scan(
			&rec.ID, &rec.StartedAt, &rec.FinishedAt, &outcome,
			&rec.RideTitle, &rec.RideDate, &rec.Attempts, &rec.LastError, &rec.ArtifactRef,
		); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.Outcome = entity.OutcomeKind(outcome)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
