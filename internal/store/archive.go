// Package store persists the engine's state: the published per-board
// ledger documents (plain JSON, written atomically) and a SQLite archive
// of runs and raw measurements that serves as the audit trail for the
// untrusted source inputs.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// RunRecord is one archived pipeline run.
type RunRecord struct {
	ID         int64     `db:"id" json:"id"`
	Board      string    `db:"board" json:"board"`
	RunDate    string    `db:"run_date" json:"run_date"`
	Mode       string    `db:"mode" json:"mode"`
	Qualified  int       `db:"qualified" json:"qualified"`
	Total      int       `db:"total" json:"total"`
	Digest     string    `db:"digest" json:"digest"`
	Status     string    `db:"status" json:"status"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}

// Measurement is one raw value observed from a source during a run,
// together with the roster entity it resolved to (empty when unmatched).
type Measurement struct {
	ID           int64   `db:"id" json:"id"`
	RunID        int64   `db:"run_id" json:"run_id"`
	Source       string  `db:"source" json:"source"`
	Category     string  `db:"category" json:"category"`
	RawName      string  `db:"raw_name" json:"raw_name"`
	ResolvedName string  `db:"resolved_name" json:"resolved_name"`
	Value        float64 `db:"value" json:"value"`
}

// Archive records runs and measurements in SQLite.
type Archive struct {
	db *sqlx.DB
}

// OpenArchive opens the SQLite database and runs migrations.
func OpenArchive(path string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordRun inserts a run record and returns its id.
func (a *Archive) RecordRun(ctx context.Context, r *RunRecord) (int64, error) {
	res, err := a.db.ExecContext(ctx, `
		INSERT INTO runs (board, run_date, mode, qualified, total, digest, status, detail, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Board, r.RunDate, r.Mode, r.Qualified, r.Total, r.Digest, r.Status, r.Detail, r.StartedAt, r.FinishedAt)
	if err != nil {
		return 0, fmt.Errorf("record run %s/%s: %w", r.Board, r.RunDate, err)
	}

	id, _ := res.LastInsertId()
	r.ID = id
	return id, nil
}

// RecordMeasurements archives the raw values observed during a run.
func (a *Archive) RecordMeasurements(ctx context.Context, runID int64, ms []Measurement) error {
	for _, m := range ms {
		_, err := a.db.ExecContext(ctx, `
			INSERT INTO measurements (run_id, source, category, raw_name, resolved_name, value)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, m.Source, m.Category, m.RawName, m.ResolvedName, m.Value)
		if err != nil {
			return fmt.Errorf("record measurement %s/%s: %w", m.Source, m.RawName, err)
		}
	}
	return nil
}

// RecentRuns lists archived runs, newest first, optionally for one board.
func (a *Archive) RecentRuns(ctx context.Context, board string, limit int) ([]RunRecord, error) {
	query := "SELECT * FROM runs"
	var args []any

	if board != "" {
		query += " WHERE board = ?"
		args = append(args, board)
	}
	query += " ORDER BY id DESC"

	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var runs []RunRecord
	if err := a.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// RunMeasurements lists the raw values archived for one run.
func (a *Archive) RunMeasurements(ctx context.Context, runID int64) ([]Measurement, error) {
	var ms []Measurement
	err := a.db.SelectContext(ctx, &ms,
		"SELECT * FROM measurements WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("list measurements for run %d: %w", runID, err)
	}
	return ms, nil
}
