package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown run id
var ErrNotFound = errors.New("run not found")

// RunRecord is the persisted summary of one pipeline run
type RunRecord struct {
	ID               string            `json:"id"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
	Success          bool              `json:"success"`
	FinalState       string            `json:"final_state"`
	ErrorType        string            `json:"error_type,omitempty"`
	Error            string            `json:"error,omitempty"`
	ExecutionSeconds float64           `json:"execution_time"`
	SuccessRate      float64           `json:"validation_success_rate"`
	Stats            map[string]any    `json:"stats,omitempty"`
	RowsOut          map[string]int    `json:"rows_out,omitempty"`
	Checksums        map[string]string `json:"checksums,omitempty"`
}

type runRow struct {
	ID               string         `db:"id"`
	StartedAt        int64          `db:"started_at"`
	FinishedAt       int64          `db:"finished_at"`
	Success          bool           `db:"success"`
	FinalState       string         `db:"final_state"`
	ErrorType        sql.NullString `db:"error_type"`
	Error            sql.NullString `db:"error"`
	ExecutionSeconds float64        `db:"execution_seconds"`
	SuccessRate      float64        `db:"success_rate"`
	Payload          string         `db:"payload"`
}

type payload struct {
	Stats     map[string]any    `json:"stats,omitempty"`
	RowsOut   map[string]int    `json:"rows_out,omitempty"`
	Checksums map[string]string `json:"checksums,omitempty"`
}

// Store persists run records in a SQLite database
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the SQLite history database at dbPath
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			success INTEGER NOT NULL,
			final_state TEXT NOT NULL,
			error_type TEXT,
			error TEXT,
			execution_seconds REAL NOT NULL DEFAULT 0,
			success_rate REAL NOT NULL DEFAULT 0,
			payload TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs(started_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Record inserts or replaces run
func (s *Store) Record(ctx context.Context, run RunRecord) error {
	data, err := json.Marshal(payload{Stats: run.Stats, RowsOut: run.RowsOut, Checksums: run.Checksums})
	if err != nil {
		return fmt.Errorf("encode run payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pipeline_runs
			(id, started_at, finished_at, success, final_state, error_type, error, execution_seconds, success_rate, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.Success,
		run.FinalState,
		nullable(run.ErrorType),
		nullable(run.Error),
		run.ExecutionSeconds,
		run.SuccessRate,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns the run with id
func (s *Store) Get(ctx context.Context, id string) (*RunRecord, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM pipeline_runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return row.record()
}

// List returns up to limit runs, most recent first
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM pipeline_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]RunRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		runs = append(runs, *rec)
	}
	return runs, nil
}

func (r runRow) record() (*RunRecord, error) {
	var p payload
	if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
		return nil, fmt.Errorf("decode run payload %s: %w", r.ID, err)
	}
	return &RunRecord{
		ID:               r.ID,
		StartedAt:        time.UnixMilli(r.StartedAt).UTC(),
		FinishedAt:       time.UnixMilli(r.FinishedAt).UTC(),
		Success:          r.Success,
		FinalState:       r.FinalState,
		ErrorType:        r.ErrorType.String,
		Error:            r.Error.String,
		ExecutionSeconds: r.ExecutionSeconds,
		SuccessRate:      r.SuccessRate,
		Stats:            p.Stats,
		RowsOut:          p.RowsOut,
		Checksums:        p.Checksums,
	}, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
