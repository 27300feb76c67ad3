package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const checkRunColumns = `id, catalog_path, status, started_at, completed_at, url_count, failed_count, error`

// CreateCheckRun starts a new link-check run for a catalog.
func (s *SQLiteStore) CreateCheckRun(catalogPath string) (*CheckRun, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	run := &CheckRun{
		ID:          generateID(),
		CatalogPath: catalogPath,
		Status:      CheckRunRunning,
		StartedAt:   time.Now().UTC(),
	}

	s.logger.Debug("creating check run", slog.String("id", run.ID), slog.String("catalog", catalogPath))

	_, err := s.db.ExecContext(ctx(),
		`INSERT INTO check_runs (id, catalog_path, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.CatalogPath, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create check run: %w", err)
	}

	return run, nil
}

// CompleteCheckRun marks a run as finished with the given status.
func (s *SQLiteStore) CompleteCheckRun(id string, status CheckRunStatus, errMsg string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.ExecContext(ctx(),
		`UPDATE check_runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), now, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete check run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return nil
}

// GetCheckRun retrieves a run by ID.
func (s *SQLiteStore) GetCheckRun(id string) (*CheckRun, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	row := s.db.QueryRowContext(ctx(), `SELECT `+checkRunColumns+` FROM check_runs WHERE id = ?`, id)
	run, err := scanCheckRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check run: %w", err)
	}

	return run, nil
}

// GetLatestCheckRun retrieves the most recent completed run, or nil when
// no run has completed yet.
func (s *SQLiteStore) GetLatestCheckRun() (*CheckRun, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	row := s.db.QueryRowContext(ctx(),
		`SELECT `+checkRunColumns+` FROM check_runs WHERE status = ? ORDER BY started_at DESC LIMIT 1`,
		string(CheckRunCompleted),
	)
	run, err := scanCheckRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No runs found, return nil without error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest check run: %w", err)
	}

	return run, nil
}

// ListCheckRuns returns runs newest first. A limit <= 0 returns every run.
func (s *SQLiteStore) ListCheckRuns(limit int) ([]*CheckRun, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT `+checkRunColumns+` FROM check_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*CheckRun
	for rows.Next() {
		run, err := scanCheckRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheckRun(row scanner) (*CheckRun, error) {
	run := &CheckRun{}
	var status string
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := row.Scan(&run.ID, &run.CatalogPath, &status, &run.StartedAt, &completedAt,
		&run.URLCount, &run.FailedCount, &errMsg)
	if err != nil {
		return nil, err
	}

	run.Status = CheckRunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return run, nil
}
