package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/iocache"
	"github.com/huangsam/gitsummary/internal/tracefile"
	"github.com/huangsam/gitsummary/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRepo = "/repo"

func logRow(hash, date, name string) string {
	return fmt.Sprintf("%s │ Mon 2024-01-01 00:00:00 +0000 │ Mon, 1 Jan 2024 00:00:00 +0000 │ %s │ %s │ %s@example.com", hash, date, name, strings.ToLower(name))
}

func logOut(rows ...string) []byte {
	return []byte(strings.Join(rows, "\n"))
}

// newRepoMock models a repository with one root commit c1 shared by main and feature,
// c2 only on main and c3 only on feature. overrides run first so they take precedence.
func newRepoMock(overrides func(m *contract.MockGitClient)) *contract.MockGitClient {
	m := &contract.MockGitClient{}
	if overrides != nil {
		overrides(m)
	}
	anything := mock.Anything

	m.On("GetVersion", anything).Return("git version 2.45.0", nil).Maybe()
	m.On("GetCurrentBranch", anything, testRepo).Return("main", nil).Maybe()
	m.On("ListRemotes", anything, testRepo).Return([]string{"origin"}, nil).Maybe()
	m.On("ListRemoteBranchRefs", anything, testRepo).
		Return([]string{"origin/HEAD", "origin/main", "origin/feature"}, nil).Maybe()

	m.On("GetBranchLog", anything, testRepo, "origin/main").Return(logOut(
		logRow("c2", "2024-01-02T00:00:00Z", "Bob"),
		logRow("c1", "2024-01-01T00:00:00Z", "Ann"),
	), nil).Maybe()
	m.On("GetBranchLog", anything, testRepo, "origin/feature").Return(logOut(
		logRow("c3", "2024-01-03T00:00:00Z", "Cid"),
		logRow("c1", "2024-01-01T00:00:00Z", "Ann"),
	), nil).Maybe()
	m.On("GetBranchLog", anything, testRepo, "").Return(logOut(
		logRow("c2", "2024-01-02T00:00:00Z", "Bob"),
		logRow("c1", "2024-01-01T00:00:00Z", "Ann"),
	), nil).Maybe()

	m.On("GetParentGraph", anything, testRepo, "origin/main").Return([]byte("c2 c1\nc1\n"), nil).Maybe()
	m.On("GetParentGraph", anything, testRepo, "origin/feature").Return([]byte("c3 c1\nc1\n"), nil).Maybe()

	for _, h := range []string{"c1", "c2", "c3"} {
		text := fmt.Sprintf("commit %s\nAuthor: someone\n\n\n%s.txt | 1 +\n", h, h)
		m.On("GetCommitDetail", anything, testRepo, h).Return([]byte(text), nil).Maybe()
	}
	m.On("ListContainingBranchRefs", anything, testRepo, "c1").
		Return([]string{"origin/HEAD", "origin/main", "origin/feature"}, nil).Maybe()
	m.On("ListContainingBranchRefs", anything, testRepo, "c2").Return([]string{"origin/main"}, nil).Maybe()
	m.On("ListContainingBranchRefs", anything, testRepo, "c3").Return([]string{"origin/feature"}, nil).Maybe()
	return m
}

func testConfig() *contract.Config {
	return &contract.Config{RepoPath: testRepo, Workers: 4}
}

func commitsByHash(report *schema.Report) map[string][]schema.CommitRecord {
	out := make(map[string][]schema.CommitRecord)
	for _, b := range report.Branches {
		for _, c := range b.Commits {
			out[c.Hash] = append(out[c.Hash], c)
		}
	}
	return out
}

func TestBuildFullReport(t *testing.T) {
	client := newRepoMock(nil)

	report, err := BuildFullReport(context.Background(), testConfig(), client, nil)
	require.NoError(t, err)
	require.NotNil(t, report)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)
	assert.Equal(t, testRepo, report.RepositoryFolder)
	assert.Equal(t, "git version 2.45.0", report.ToolVersion)
	assert.Equal(t, "main", report.InitialBranch)
	assert.Empty(t, report.Errors)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	require.Len(t, report.Branches, 2)
	assert.Equal(t, "feature", report.Branches[0].BranchName, "equal dates and counts fall back to name order")
	assert.Equal(t, "main", report.Branches[1].BranchName)

	byHash := commitsByHash(report)
	require.Len(t, byHash["c1"], 2)
	for _, c := range byHash["c1"] {
		assert.Equal(t, []string{"feature", "main"}, c.BranchNames)
		assert.Equal(t, "feature", c.BranchName, "tie on oldest date goes to the smaller name")
		assert.Empty(t, c.ParentHashes)
		assert.Equal(t, "c1.txt | 1 +", c.Summary)
	}
	assert.Equal(t, "main", byHash["c2"][0].BranchName)
	assert.Equal(t, []string{"c1"}, byHash["c2"][0].ParentHashes)
	assert.Equal(t, "feature", byHash["c3"][0].BranchName)
	assert.Contains(t, byHash["c3"][0].DetailText, "commit c3")
}

func TestBuildFullReport_BranchFailureIsIsolated(t *testing.T) {
	client := newRepoMock(func(m *contract.MockGitClient) {
		m.On("GetBranchLog", mock.Anything, testRepo, "origin/feature").Return(nil, errors.New("exit code 128"))
	})

	report, err := BuildFullReport(context.Background(), testConfig(), client, nil)
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "origin/feature")

	require.Len(t, report.Branches, 2)
	main := report.Branches[0]
	assert.Equal(t, "main", main.BranchName)
	require.Len(t, main.Commits, 2)
	assert.Equal(t, "c2", main.Commits[0].Hash)
	assert.NotEmpty(t, main.Commits[0].Summary)

	feature := report.Branches[1]
	assert.Equal(t, "feature", feature.BranchName)
	assert.Empty(t, feature.Commits)

	c1 := main.Commits[1]
	assert.Equal(t, []string{"feature", "main"}, c1.BranchNames, "containment query still reports feature")
	assert.Equal(t, "main", c1.BranchName, "branches without history never win ownership")
	client.AssertNotCalled(t, "GetCommitDetail", mock.Anything, testRepo, "c3")
}

func TestBuildFullReport_DetailFailureKeepsBaseFields(t *testing.T) {
	client := newRepoMock(func(m *contract.MockGitClient) {
		m.On("GetCommitDetail", mock.Anything, testRepo, "c2").Return(nil, errors.New("bad object"))
	})

	report, err := BuildFullReport(context.Background(), testConfig(), client, nil)
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "c2")

	c2 := commitsByHash(report)["c2"][0]
	assert.Equal(t, "Bob", c2.AuthorName)
	assert.Empty(t, c2.DetailText)
	assert.Empty(t, c2.Summary)
	assert.Equal(t, "main", c2.BranchName)
}

func TestBuildFullReport_EnumerationFailure(t *testing.T) {
	client := newRepoMock(func(m *contract.MockGitClient) {
		m.On("ListRemoteBranchRefs", mock.Anything, testRepo).Return(nil, errors.New("not a git repository"))
	})

	report, err := BuildFullReport(context.Background(), testConfig(), client, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Branches)
	assert.NotNil(t, report.Branches)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Query git branches")
	assert.Equal(t, "main", report.InitialBranch)
	assert.Equal(t, "git version 2.45.0", report.ToolVersion)
}

func TestBuildFullReport_EmptyRepository(t *testing.T) {
	client := newRepoMock(func(m *contract.MockGitClient) {
		m.On("ListRemoteBranchRefs", mock.Anything, testRepo).Return([]string{}, nil)
		m.On("GetCurrentBranch", mock.Anything, testRepo).Return("trunk", nil)
	})

	report, err := BuildFullReport(context.Background(), testConfig(), client, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Branches)
	assert.Empty(t, report.Errors)
	assert.Equal(t, "trunk", report.InitialBranch)
}

func TestBuildFullReport_StrictMode(t *testing.T) {
	failingVersion := func(m *contract.MockGitClient) {
		m.On("GetVersion", mock.Anything).Return("", contract.ErrGitNotFound)
	}

	t.Run("lenient records the failure", func(t *testing.T) {
		report, err := BuildFullReport(context.Background(), testConfig(), newRepoMock(failingVersion), nil)
		require.NoError(t, err)
		require.NotEmpty(t, report.Errors)
		assert.Contains(t, report.Errors[0], "Query git version")
		assert.Len(t, report.Branches, 2)
	})

	t.Run("strict raises version failure", func(t *testing.T) {
		cfg := testConfig()
		cfg.RepoPath = t.TempDir()
		cfg.Strict = true
		report, err := BuildFullReport(context.Background(), cfg, newRepoMock(failingVersion), nil)
		assert.Nil(t, report)
		assert.ErrorIs(t, err, contract.ErrGitNotFound)
	})

	t.Run("strict raises unusable path", func(t *testing.T) {
		cfg := testConfig()
		cfg.RepoPath = filepath.Join(t.TempDir(), "missing")
		cfg.Strict = true
		_, err := BuildFullReport(context.Background(), cfg, newRepoMock(nil), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestBuildFullReport_FetchFirst(t *testing.T) {
	client := newRepoMock(func(m *contract.MockGitClient) {
		m.On("Fetch", mock.Anything, testRepo, true).Return(errors.New("offline")).Once()
	})
	cfg := testConfig()
	cfg.FetchFirst = true

	report, err := BuildFullReport(context.Background(), cfg, client, nil)
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "offline")
	assert.Len(t, report.Branches, 2)
	client.AssertCalled(t, "Fetch", mock.Anything, testRepo, true)
}

func TestBuildFullReport_Uniqueness(t *testing.T) {
	report, err := BuildFullReport(context.Background(), testConfig(), newRepoMock(nil), nil)
	require.NoError(t, err)
	for hash, occurrences := range commitsByHash(report) {
		for _, c := range occurrences[1:] {
			assert.Equal(t, occurrences[0].BranchNames, c.BranchNames, hash)
			assert.Equal(t, occurrences[0].BranchName, c.BranchName, hash)
		}
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	started   map[string]int
	completed map[string]int
	finished  []string
}

func (o *recordingObserver) WaveStarted(wave string, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started[wave] = total
}

func (o *recordingObserver) ItemCompleted(wave, _ string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed[wave]++
}

func (o *recordingObserver) WaveFinished(wave string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, wave)
}

func TestBuildFullReport_Observers(t *testing.T) {
	obs := &recordingObserver{started: map[string]int{}, completed: map[string]int{}}

	_, err := BuildFullReport(context.Background(), testConfig(), newRepoMock(nil), nil, obs)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{BranchWave: 2, CommitWave: 3}, obs.started)
	assert.Equal(t, map[string]int{BranchWave: 2, CommitWave: 3}, obs.completed)
	assert.Equal(t, []string{BranchWave, CommitWave}, obs.finished)
}

func TestBuildFullReport_TraceFiles(t *testing.T) {
	cfg := testConfig()
	cfg.Trace = contract.TraceConfig{Enabled: true, Folder: t.TempDir()}

	report, err := BuildFullReport(context.Background(), cfg, newRepoMock(nil), nil)
	require.NoError(t, err)
	require.Empty(t, report.Errors)

	root := filepath.Join(cfg.Trace.Folder, "repo")
	for _, name := range []string{
		tracefile.RemotesFile,
		tracefile.BranchesFile,
		tracefile.FullLogFile,
		tracefile.BranchLogName("origin/main"),
		tracefile.CommitName("c1"),
		tracefile.FullReportFile,
	} {
		assert.FileExists(t, filepath.Join(root, name))
	}

	populate, err := os.ReadFile(filepath.Join(root, tracefile.PopulateFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(populate)), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, string(populate), "of 3 | Commit c")

	branches, err := os.ReadFile(filepath.Join(root, tracefile.BranchesFile))
	require.NoError(t, err)
	assert.Equal(t, "origin/main\norigin/feature", string(branches))
}

func TestBuildFullReport_RecordsHistory(t *testing.T) {
	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.AnythingOfType("string"), testRepo, mock.Anything).Return(nil)
	history.On("RecordOwnership", mock.AnythingOfType("string"), mock.MatchedBy(func(c []schema.CommitRecord) bool {
		return len(c) == 3
	})).Return(nil)
	history.On("EndRun", mock.AnythingOfType("string"), mock.Anything, mock.Anything).Return(errors.New("disk full"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetDetailStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	report, err := BuildFullReport(context.Background(), testConfig(), newRepoMock(nil), mgr)
	require.NoError(t, err)
	assert.Empty(t, report.Errors, "history failures are logged, not reported")
	history.AssertExpectations(t)
	history.AssertCalled(t, "BeginRun", report.ID, testRepo, mock.Anything)
}

func TestGetSummary(t *testing.T) {
	client := newRepoMock(nil)
	commits, err := GetSummary(context.Background(), client, testRepo, nil)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "c2", commits[0].Hash)

	failing := &contract.MockGitClient{}
	failing.On("GetBranchLog", mock.Anything, testRepo, "").Return(nil, errors.New("boom"))
	_, err = GetSummary(context.Background(), failing, testRepo, nil)
	assert.ErrorContains(t, err, "boom")
}

func TestCheckoutAndFetchPull(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("Checkout", mock.Anything, testRepo, "dev").Return(nil)
	client.On("Checkout", mock.Anything, testRepo, "nope").Return(errors.New("pathspec"))
	client.On("Fetch", mock.Anything, testRepo, true).Return(nil)
	client.On("Pull", mock.Anything, testRepo, false).Return(errors.New("conflict"))

	ctx := context.Background()
	assert.NoError(t, Checkout(ctx, client, testRepo, "dev"))
	assert.ErrorContains(t, Checkout(ctx, client, testRepo, "nope"), "checkout nope")
	assert.NoError(t, FetchPull(ctx, client, testRepo, false, true))
	assert.ErrorContains(t, FetchPull(ctx, client, testRepo, true, false), "pull: conflict")
}
