package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tc-opendata/railcat/pkg/core"
)

// SaveLinkResults stores the results of a run and updates its URL and
// failure counts. Results for a URL already stored on the run are replaced.
func (s *SQLiteStore) SaveLinkResults(runID string, results []core.LinkResult) error {
	if s.db == nil {
		return ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx(), `SELECT 1 FROM check_runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up check run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx(),
		`INSERT OR REPLACE INTO link_results
		 (run_id, url, status, status_code, error, attempts, duration_ms, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare link result insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range results {
		var errorPtr *string
		if r.Error != "" {
			e := r.Error
			errorPtr = &e
		}
		checkedAt := r.CheckedAt
		if checkedAt.IsZero() {
			checkedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx(),
			runID, r.URL, string(r.Status), r.StatusCode, errorPtr, r.Attempts,
			r.Duration.Milliseconds(), checkedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save link result for %s: %w", r.URL, err)
		}
	}

	result, err := tx.ExecContext(ctx(),
		`UPDATE check_runs SET
		   url_count = (SELECT COUNT(*) FROM link_results WHERE run_id = ?),
		   failed_count = (SELECT COUNT(*) FROM link_results WHERE run_id = ? AND status IN (?, ?))
		 WHERE id = ?`,
		runID, runID, string(core.LinkStatusBroken), string(core.LinkStatusUnreachable), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update check run counts: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("saved link results", slog.String("run", runID), slog.Int("count", len(results)))
	return nil
}

// GetLinkResults returns the results of a run ordered by URL.
func (s *SQLiteStore) GetLinkResults(runID string) ([]core.LinkResult, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT url, status, status_code, error, attempts, duration_ms, checked_at
		 FROM link_results WHERE run_id = ? ORDER BY url`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get link results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []core.LinkResult
	for rows.Next() {
		var r core.LinkResult
		var status string
		var errMsg sql.NullString
		var durationMS int64

		if err := rows.Scan(&r.URL, &status, &r.StatusCode, &errMsg, &r.Attempts, &durationMS, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan link result: %w", err)
		}
		r.Status = core.LinkStatus(status)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if errMsg.Valid {
			r.Error = errMsg.String
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
