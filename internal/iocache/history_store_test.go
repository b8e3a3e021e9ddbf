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

var historyStart = time.Date(2026, 5, 4, 9, 30, 0, 123456789, time.UTC)

func sampleReport() *schema.Report {
	report := schema.NewReport("run-1", "/repo")
	report.ToolVersion = "git version 2.45.0"
	report.InitialBranch = "main"
	report.Errors = []string{"Query git log for branch origin/broken: exit status 128"}
	report.Branches = []schema.BranchRecord{
		{RemoteName: "origin", BranchName: "main", Commits: []schema.CommitRecord{
			{Hash: "c2", CommitDate: historyStart.Add(-time.Hour), AuthorName: "Ann", AuthorEmail: "ann@example.com", BranchNames: []string{"main"}, BranchName: "main", Summary: "1 file changed"},
			{Hash: "c1", AuthorName: "Bob", BranchNames: []string{"feature", "main"}, BranchName: "feature"},
		}},
		{RemoteName: "origin", BranchName: "feature", Commits: []schema.CommitRecord{
			{Hash: "c1", AuthorName: "Bob", BranchNames: []string{"feature", "main"}, BranchName: "feature"},
		}},
	}
	return report
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.BeginRun("r", "/repo", time.Now()))
	assert.NoError(t, store.EndRun("r", time.Now(), sampleReport()))
	assert.NoError(t, store.RecordOwnership("r", sampleReport().DistinctCommits()))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStore_UnsupportedBackend(t *testing.T) {
	_, err := NewHistoryStore(schema.MemoryBackend, "")
	assert.Error(t, err)
}

func TestHistoryStore_SQLite(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	report := sampleReport()
	require.NoError(t, store.BeginRun(report.ID, report.RepositoryFolder, historyStart))
	require.NoError(t, store.RecordOwnership(report.ID, report.DistinctCommits()))
	end := historyStart.Add(1500 * time.Millisecond)
	require.NoError(t, store.EndRun(report.ID, end, report))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "/repo", run.RepoPath)
	assert.Equal(t, "git version 2.45.0", run.ToolVersion)
	assert.Equal(t, "main", run.InitialBranch)
	assert.True(t, historyStart.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, end.Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalBranches)
	assert.Equal(t, int32(2), run.TotalCommits)
	assert.Equal(t, int32(1), run.TotalErrors)

	ownership, err := store.GetAllOwnership()
	require.NoError(t, err)
	require.Len(t, ownership, 2)

	c1, c2 := ownership[0], ownership[1]
	assert.Equal(t, "c1", c1.CommitHash)
	require.NotNil(t, c1.OwnerBranch)
	assert.Equal(t, "feature", *c1.OwnerBranch)
	assert.Equal(t, "feature;main", c1.BranchNames)
	assert.True(t, c1.CommitTime.IsZero(), "unknown commit dates are stored as NULL")
	assert.Nil(t, c1.Summary)

	assert.Equal(t, "c2", c2.CommitHash)
	assert.True(t, historyStart.Add(-time.Hour).Equal(c2.CommitTime))
	require.NotNil(t, c2.Summary)
	assert.Equal(t, "1 file changed", *c2.Summary)
	assert.Equal(t, "ann@example.com", c2.AuthorEmail)
}

func TestHistoryStore_EndRunUnknown(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun("missing", time.Now(), nil))
}

func TestHistoryStore_DuplicateOwnership(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	commits := []schema.CommitRecord{{Hash: "c1"}, {Hash: "c1"}}
	require.NoError(t, store.BeginRun("r", "/repo", historyStart))
	assert.Error(t, store.RecordOwnership("r", commits))

	ownership, err := store.GetAllOwnership()
	require.NoError(t, err)
	assert.Empty(t, ownership, "a failed batch is rolled back as a whole")
}

func TestHistoryStore_Status(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[reportRunsTable])

	for i, id := range []string{"older", "newer"} {
		start := historyStart.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.BeginRun(id, "/repo", start))
		require.NoError(t, store.RecordOwnership(id, sampleReport().DistinctCommits()))
		require.NoError(t, store.EndRun(id, start.Add(time.Second), sampleReport()))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, "newer", status.LastRunID)
	assert.True(t, historyStart.Add(time.Hour).Equal(status.LastRunTime))
	assert.True(t, historyStart.Equal(status.OldestRunTime))
	assert.Equal(t, 4, status.TotalCommits)
	assert.Equal(t, int64(2), status.TableSizes[reportRunsTable])
	assert.Equal(t, int64(4), status.TableSizes[commitOwnershipTable])
}

func TestHistoryStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.BeginRun("r", "/repo", historyStart))
	require.NoError(t, store.Close())

	reopened, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err, "opening an up-to-date database is not an error")
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
}

func TestMigrateHistory_UnsupportedBackends(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.NoneBackend, schema.MemoryBackend} {
		err := MigrateHistory(backend, "", -1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrations are not supported")
	}
}

func TestMigrateHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	// Already current
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 1))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 2))

	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	assert.NoError(t, store.BeginRun("r", "/repo", historyStart))
}

func TestMigrateHistory_SQLiteInMemory(t *testing.T) {
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, ":memory:", -1))
}

func TestTimeColumn(t *testing.T) {
	var tc timeColumn
	require.NoError(t, tc.Scan(nil))
	assert.Nil(t, tc.ptr())

	require.NoError(t, tc.Scan("2026-05-04T09:30:00.000000000Z"))
	assert.True(t, tc.Valid)

	require.NoError(t, tc.Scan([]byte("2026-05-04 09:30:00.250000")))
	assert.Equal(t, 250*time.Millisecond, time.Duration(tc.Time.Nanosecond()))

	assert.Error(t, tc.Scan("yesterday"))
	assert.Error(t, tc.Scan(42))
}
