// Package storage persists run history in a local SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"testsmith/pkg/types"
)

// HistoryStore records generation runs and their per-file results.
type HistoryStore struct {
	db   *sql.DB
	path string
}

// NewHistoryStore opens (or creates) the history database at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	// Connection parameters for better concurrency
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &HistoryStore{db: db, path: path}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_path TEXT,
		started_at INTEGER,
		finished_at INTEGER,
		generated INTEGER,
		failed INTEGER,
		build_ok INTEGER,
		line_percent REAL,
		function_percent REAL,
		branch_percent REAL,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS file_results (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		source_path TEXT,
		test_path TEXT,
		status TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// NewRunID returns an id for a run record.
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun inserts or replaces a run record.
func (s *HistoryStore) SaveRun(run *types.RunRecord) error {
	var line, fn, branch sql.NullFloat64
	if run.Coverage != nil {
		line = sql.NullFloat64{Float64: run.Coverage.LinePercent, Valid: true}
		fn = sql.NullFloat64{Float64: run.Coverage.FunctionPercent, Valid: true}
		if run.Coverage.HasBranchData {
			branch = sql.NullFloat64{Float64: run.Coverage.BranchPercent, Valid: true}
		}
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO runs
		(id, source_path, started_at, finished_at, generated, failed, build_ok,
		 line_percent, function_percent, branch_percent, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourcePath,
		run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Generated, run.Failed, boolToInt(run.BuildOK),
		line, fn, branch, string(run.Status))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// SaveFileResult inserts one per-file result. A missing id is filled in.
func (s *HistoryStore) SaveFileResult(fr *types.FileResult) error {
	if fr.ID == "" {
		fr.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO file_results
		(id, run_id, source_path, test_path, status, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fr.ID, fr.RunID, fr.SourcePath, fr.TestPath, string(fr.Status), fr.Error)
	if err != nil {
		return fmt.Errorf("saving file result: %w", err)
	}
	return nil
}

// ListRuns returns up to limit most recent runs, newest first.
func (s *HistoryStore) ListRuns(limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, source_path, started_at, finished_at, generated, failed,
		       build_ok, line_percent, function_percent, branch_percent, status
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		var r types.RunRecord
		var started, finished int64
		var buildOK int
		var line, fn, branch sql.NullFloat64
		var status string
		if err := rows.Scan(&r.ID, &r.SourcePath, &started, &finished,
			&r.Generated, &r.Failed, &buildOK, &line, &fn, &branch, &status); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		r.BuildOK = buildOK != 0
		r.Status = types.RunStatus(status)
		if line.Valid {
			r.Coverage = &types.CoverageSummary{
				LinePercent:     line.Float64,
				FunctionPercent: fn.Float64,
			}
			if branch.Valid {
				r.Coverage.BranchPercent = branch.Float64
				r.Coverage.HasBranchData = true
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FileResults returns the per-file results of a run.
func (s *HistoryStore) FileResults(runID string) ([]types.FileResult, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, source_path, test_path, status, error
		FROM file_results WHERE run_id = ? ORDER BY source_path`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.FileResult
	for rows.Next() {
		var fr types.FileResult
		var status string
		if err := rows.Scan(&fr.ID, &fr.RunID, &fr.SourcePath, &fr.TestPath, &status, &fr.Error); err != nil {
			return nil, err
		}
		fr.Status = types.FileStatus(status)
		results = append(results, fr)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
