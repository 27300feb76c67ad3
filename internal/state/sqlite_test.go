package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tc-opendata/railcat/internal/testutil"
	"github.com/tc-opendata/railcat/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleResults() []core.LinkResult {
	now := time.Now().UTC()
	return []core.LinkResult{
		{URL: "https://data.sbb.ch/", Status: core.LinkStatusOK, StatusCode: 200, Attempts: 1, Duration: 120 * time.Millisecond, CheckedAt: now},
		{URL: "https://data.deutschebahn.com/gone", Status: core.LinkStatusBroken, StatusCode: 404, Attempts: 1, CheckedAt: now},
		{URL: "https://offline.example.org", Status: core.LinkStatusUnreachable, Error: "connection refused", Attempts: 4, CheckedAt: now},
	}
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "closing twice is a no-op")
}

func TestSQLiteStore_OpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".railcat", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate())

	assert.FileExists(t, path)
	assert.Equal(t, path, store.Path())
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"check_runs", "link_results"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s should exist", table)
		_ = rows.Close()
	}

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.Migrate(), "migrating twice is a no-op")
}

func TestSQLiteStore_NotOpen(t *testing.T) {
	store := NewSQLiteStore(nil)

	_, err := store.CreateCheckRun("catalog.yaml")
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, store.CompleteCheckRun("x", CheckRunCompleted, ""), ErrNotOpen)
	_, err = store.GetCheckRun("x")
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = store.GetLatestCheckRun()
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = store.ListCheckRuns(0)
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, store.SaveLinkResults("x", nil), ErrNotOpen)
	_, err = store.GetLinkResults("x")
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, store.Migrate(), ErrNotOpen)
}

func TestSQLiteStore_CheckRunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateCheckRun("catalog.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, CheckRunRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	latest, err := store.GetLatestCheckRun()
	require.NoError(t, err)
	assert.Nil(t, latest, "running runs are not reported as latest")

	require.NoError(t, store.SaveLinkResults(run.ID, sampleResults()))
	require.NoError(t, store.CompleteCheckRun(run.ID, CheckRunCompleted, ""))

	got, err := store.GetCheckRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, CheckRunCompleted, got.Status)
	assert.Equal(t, "catalog.yaml", got.CatalogPath)
	assert.Equal(t, 3, got.URLCount)
	assert.Equal(t, 2, got.FailedCount)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.Error)

	latest, err = store.GetLatestCheckRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
}

func TestSQLiteStore_FailedRun(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateCheckRun("catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, store.CompleteCheckRun(run.ID, CheckRunFailed, "link check cancelled"))

	got, err := store.GetCheckRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, CheckRunFailed, got.Status)
	assert.Equal(t, "link check cancelled", got.Error)

	latest, err := store.GetLatestCheckRun()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetCheckRun("missing")
	require.ErrorIs(t, err, ErrRunNotFound)

	err = store.CompleteCheckRun("missing", CheckRunCompleted, "")
	require.ErrorIs(t, err, ErrRunNotFound)

	err = store.SaveLinkResults("missing", nil)
	require.ErrorIs(t, err, ErrRunNotFound)

	err = store.SaveLinkResults("missing", sampleResults())
	require.ErrorIs(t, err, ErrRunNotFound)

	results, err := store.GetLinkResults("missing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteStore_LinkResultsRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateCheckRun("catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, store.SaveLinkResults(run.ID, sampleResults()))

	results, err := store.GetLinkResults(run.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// ordered by URL
	assert.Equal(t, "https://data.deutschebahn.com/gone", results[0].URL)
	assert.Equal(t, core.LinkStatusBroken, results[0].Status)
	assert.Equal(t, 404, results[0].StatusCode)

	assert.Equal(t, 120*time.Millisecond, results[1].Duration)

	assert.Equal(t, core.LinkStatusUnreachable, results[2].Status)
	assert.Equal(t, "connection refused", results[2].Error)
	assert.Equal(t, 4, results[2].Attempts)
	assert.False(t, results[2].CheckedAt.IsZero())
}

func TestSQLiteStore_SaveLinkResultsReplaces(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateCheckRun("catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, store.SaveLinkResults(run.ID, sampleResults()))

	fixed := core.LinkResult{URL: "https://data.deutschebahn.com/gone", Status: core.LinkStatusOK, StatusCode: 200, Attempts: 1}
	require.NoError(t, store.SaveLinkResults(run.ID, []core.LinkResult{fixed}))

	got, err := store.GetCheckRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.URLCount)
	assert.Equal(t, 1, got.FailedCount)
}

func TestSQLiteStore_ListCheckRuns(t *testing.T) {
	store := setupTestStore(t)

	var ids []string
	for range 3 {
		run, err := store.CreateCheckRun("catalog.yaml")
		require.NoError(t, err)
		ids = append(ids, run.ID)
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.ListCheckRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")

	runs, err = store.ListCheckRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewWithDB(db, testutil.NewTestLogger(t))
	boom := errors.New("disk I/O error")

	t.Run("create", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO check_runs").WillReturnError(boom)
		_, err := store.CreateCheckRun("catalog.yaml")
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to create check run")
	})

	t.Run("list", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM check_runs").WillReturnError(boom)
		_, err := store.ListCheckRuns(10)
		require.ErrorIs(t, err, boom)
	})

	t.Run("save rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT 1 FROM check_runs").WithArgs("run-1").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectPrepare("INSERT OR REPLACE INTO link_results").
			ExpectExec().WillReturnError(boom)
		mock.ExpectRollback()

		err := store.SaveLinkResults("run-1", sampleResults()[:1])
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "https://data.sbb.ch/")
	})

	t.Run("save lookup error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT 1 FROM check_runs").WillReturnError(boom)
		mock.ExpectRollback()

		err := store.SaveLinkResults("run-1", sampleResults())
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to look up check run")
	})

	t.Run("latest scan error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM check_runs WHERE status").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("only-one-column"))
		_, err := store.GetLatestCheckRun()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get latest check run")
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
