// Package history persists every stage attempt of a tuning run in a local
// SQLite database, so the exact iteration and stage that stalled progress
// can be diagnosed after the process exits.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/asicflow/flowpilot/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS stage_attempts (
	id          TEXT PRIMARY KEY,
	run_tag     TEXT NOT NULL,
	iteration   INTEGER NOT NULL,
	stage       TEXT NOT NULL,
	success     INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	errors_json TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stage_attempts_run_tag
	ON stage_attempts(run_tag);
`

// Store is a SQLite-backed stage-attempt log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the attempt log at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists one stage attempt. An empty ID is filled in; the stored
// attempt is returned.
func (s *Store) Record(attempt models.StageAttempt) (models.StageAttempt, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	var errorsJSON []byte
	if len(attempt.Errors) > 0 {
		var err error
		errorsJSON, err = json.Marshal(attempt.Errors)
		if err != nil {
			return attempt, fmt.Errorf("marshal attempt errors: %w", err)
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO stage_attempts
			(id, run_tag, iteration, stage, success, duration_ms, errors_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.RunTag,
		attempt.Iteration,
		string(attempt.Stage),
		boolToInt(attempt.Success),
		attempt.Duration.Milliseconds(),
		nullableString(errorsJSON),
		attempt.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return attempt, fmt.Errorf("insert attempt: %w", err)
	}
	return attempt, nil
}

// Attempts returns every attempt recorded for runTag in insertion order.
func (s *Store) Attempts(runTag string) ([]models.StageAttempt, error) {
	rows, err := s.db.Query(`
		SELECT id, run_tag, iteration, stage, success, duration_ms, errors_json, created_at
		FROM stage_attempts
		WHERE run_tag = ?
		ORDER BY rowid`, runTag)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []models.StageAttempt
	for rows.Next() {
		var (
			attempt    models.StageAttempt
			stage      string
			success    int
			durationMs int64
			errorsJSON sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&attempt.ID, &attempt.RunTag, &attempt.Iteration, &stage,
			&success, &durationMs, &errorsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt.Stage = models.Stage(stage)
		attempt.Success = success != 0
		attempt.Duration = time.Duration(durationMs) * time.Millisecond
		if errorsJSON.Valid && errorsJSON.String != "" {
			if err := json.Unmarshal([]byte(errorsJSON.String), &attempt.Errors); err != nil {
				return nil, fmt.Errorf("parse attempt errors: %w", err)
			}
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			attempt.CreatedAt = ts
		}
		out = append(out, attempt)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
