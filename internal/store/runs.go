package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jward/lintel"
)

// RecordRun stores run and its errors in one transaction and returns the
// run ID. A missing ID is generated; ErrorCount is set from errs.
func (s *Store) RecordRun(run *Run, errs []lintel.Error) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	run.ErrorCount = len(errs)

	reviews, err := marshalBlob(run.Reviews)
	if err != nil {
		return "", fmt.Errorf("store: record run: reviews: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("store: record run: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, root, reviews, started_at, finished_at, error_count) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, reviews, run.StartedAt, run.FinishedAt, run.ErrorCount,
	); err != nil {
		return "", fmt.Errorf("store: record run: insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO errors
		(run_id, rule, path, start_line, start_col, end_line, end_col, message, details, fixes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("store: record run: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range errs {
		details, err := marshalBlob(e.Details)
		if err != nil {
			return "", fmt.Errorf("store: record run: details: %w", err)
		}
		fixes, err := marshalBlob(e.Fixes)
		if err != nil {
			return "", fmt.Errorf("store: record run: fixes: %w", err)
		}
		if _, err := stmt.Exec(run.ID, e.Rule, e.Path,
			e.Range.Start.Row, e.Range.Start.Column, e.Range.End.Row, e.Range.End.Column,
			e.Message, details, fixes,
		); err != nil {
			return "", fmt.Errorf("store: record run: insert error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: record run: commit: %w", err)
	}
	return run.ID, nil
}

// LatestRun returns the most recently finished run for root, or nil when
// none was recorded.
func (s *Store) LatestRun(root string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, root, reviews, started_at, finished_at, error_count
		 FROM runs WHERE root = ? ORDER BY finished_at DESC, rowid DESC LIMIT 1`, root)

	var run Run
	var reviews []byte
	err := row.Scan(&run.ID, &run.Root, &reviews, &run.StartedAt, &run.FinishedAt, &run.ErrorCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest run: %w", err)
	}
	if run.Reviews, err = unmarshalBlob[string](reviews); err != nil {
		return nil, fmt.Errorf("store: latest run: reviews: %w", err)
	}
	return &run, nil
}

// Errors returns the errors recorded for runID ordered by path and range.
// When paths is non-empty only errors for those paths are returned.
func (s *Store) Errors(runID string, paths ...string) ([]lintel.Error, error) {
	query := `SELECT rule, path, start_line, start_col, end_line, end_col, message, details, fixes
		FROM errors WHERE run_id = ?`
	args := []any{runID}
	if len(paths) > 0 {
		query += " AND path IN (" + placeholderList(len(paths)) + ")"
		args = append(args, stringsToArgs(paths)...)
	}
	query += " ORDER BY path, start_line, start_col, end_line, end_col, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: errors: %w", err)
	}
	defer rows.Close()

	var errs []lintel.Error
	for rows.Next() {
		var e lintel.Error
		var details, fixes []byte
		if err := rows.Scan(&e.Rule, &e.Path,
			&e.Range.Start.Row, &e.Range.Start.Column, &e.Range.End.Row, &e.Range.End.Column,
			&e.Message, &details, &fixes,
		); err != nil {
			return nil, fmt.Errorf("store: errors: scan: %w", err)
		}
		if e.Details, err = unmarshalBlob[string](details); err != nil {
			return nil, fmt.Errorf("store: errors: details: %w", err)
		}
		if e.Fixes, err = unmarshalBlob[lintel.Fix](fixes); err != nil {
			return nil, fmt.Errorf("store: errors: fixes: %w", err)
		}
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: errors: %w", err)
	}
	return errs, nil
}

// PruneRuns deletes all but the keep most recent runs for root, together
// with their errors. It returns the number of runs deleted.
func (s *Store) PruneRuns(root string, keep int) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM runs WHERE root = ? AND id NOT IN (
		   SELECT id FROM runs WHERE root = ? ORDER BY finished_at DESC, rowid DESC LIMIT ?
		 )`, root, root, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("store: prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: prune runs: %w", err)
	}
	return n, nil
}
