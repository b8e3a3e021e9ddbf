package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gitsummary/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(detailTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "absent.db"), ""))
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none and memory are no-ops", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
		assert.NoError(t, ClearHistory(schema.MemoryBackend, "", ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, ClearHistory(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestClearHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestExportHistory(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	report := sampleReport()
	require.NoError(t, store.BeginRun(report.ID, "/repo", historyStart))
	require.NoError(t, store.RecordOwnership(report.ID, report.DistinctCommits()))
	require.NoError(t, store.EndRun(report.ID, historyStart.Add(time.Second), report))

	out := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExportHistory(store, out))

	for _, suffix := range []string{".report_runs.parquet", ".commit_ownership.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExportHistoryErrors(t *testing.T) {
	t.Run("output file required", func(t *testing.T) {
		assert.Error(t, ExportHistory(&MockHistoryStore{}, ""))
	})

	t.Run("empty history", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExportHistory(store, filepath.Join(t.TempDir(), "x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no report history")
		store.AssertNotCalled(t, "GetAllRuns")
	})

	t.Run("retrieval failure", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return([]schema.ReportRunRecord(nil), assert.AnError)
		err := ExportHistory(store, filepath.Join(t.TempDir(), "x"))
		assert.ErrorIs(t, err, assert.AnError)
		store.AssertNotCalled(t, "GetAllOwnership")
	})

	t.Run("global store unset", func(t *testing.T) {
		require.Nil(t, Manager.GetHistoryStore())
		assert.Error(t, ExecuteHistoryExport("x"))
	})
}
