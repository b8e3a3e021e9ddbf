//go:build basic

package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/gitsummary/core"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownersByHash(report *schema.Report) map[string]schema.CommitRecord {
	out := make(map[string]schema.CommitRecord)
	for _, b := range report.Branches {
		for _, c := range b.Commits {
			out[c.Hash] = c
		}
	}
	return out
}

func assertFixtureOwnership(t *testing.T, f fixture, report *schema.Report) {
	t.Helper()
	assert.Empty(t, report.Errors)
	require.Len(t, report.Branches, 2)
	assert.Equal(t, "feature", report.Branches[0].BranchName, "equal oldest dates and counts fall back to name order")
	assert.Equal(t, "main", report.Branches[1].BranchName)

	commits := ownersByHash(report)
	require.Len(t, commits, 3)

	root := commits[f.Root]
	assert.Equal(t, []string{"feature", "main"}, root.BranchNames)
	assert.Equal(t, "feature", root.BranchName)
	assert.Contains(t, root.DetailText, "add root.txt")

	assert.Equal(t, "main", commits[f.OnMain].BranchName)
	assert.Equal(t, []string{f.Root}, commits[f.OnMain].ParentHashes)
	assert.Equal(t, "feature", commits[f.Feature].BranchName)
	assert.Equal(t, "Ann", commits[f.Feature].AuthorName)
}

func TestBuildFullReportAgainstRealRepository(t *testing.T) {
	f := newFixture(t)
	client := contract.NewLocalGitClient("", contract.DefaultQueryTimeout)
	cfg := &contract.Config{RepoPath: f.Clone, Workers: 4, Strict: true}

	report, err := core.BuildFullReport(context.Background(), cfg, client, nil)
	require.NoError(t, err)
	assert.Contains(t, report.ToolVersion, "git version")
	assert.Equal(t, "main", report.InitialBranch)
	assertFixtureOwnership(t, f, report)
}

func TestBuildFullReportOnEmptyRepository(t *testing.T) {
	dir := t.TempDir()
	git(t, dir, "", "init", "-q", "-b", "trunk")
	client := contract.NewLocalGitClient("", contract.DefaultQueryTimeout)
	cfg := &contract.Config{RepoPath: dir, Workers: 4}

	report, err := core.BuildFullReport(context.Background(), cfg, client, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Branches)
	assert.Empty(t, report.Errors)
	assert.Equal(t, "trunk", report.InitialBranch)
	assert.Contains(t, report.ToolVersion, "git version")
}

func TestReportCommandJSON(t *testing.T) {
	f := newFixture(t)
	traceDir := t.TempDir()

	out, err := runGitsummary(t, nil, "report", "--output", "json", "--trace-folder", traceDir, f.Clone)
	require.NoError(t, err)

	var report schema.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assertFixtureOwnership(t, f, &report)

	assert.FileExists(t, filepath.Join(traceDir, "clone", "Full Report.json"))
	assert.FileExists(t, filepath.Join(traceDir, "clone", "Populate.log"))
}

func TestReportCommandWithSQLiteStores(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	env := []string{
		"GITSUMMARY_CACHE_BACKEND=sqlite",
		"GITSUMMARY_CACHE_DB_CONNECT=" + filepath.Join(dir, "cache.db"),
		"GITSUMMARY_HISTORY_BACKEND=sqlite",
		"GITSUMMARY_HISTORY_DB_CONNECT=" + filepath.Join(dir, "history.db"),
	}

	for range 2 {
		_, err := runGitsummary(t, env, "report", f.Clone)
		require.NoError(t, err)
	}

	status, err := runGitsummary(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Entries: 3")

	status, err = runGitsummary(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 2")

	export := filepath.Join(dir, "export")
	_, err = runGitsummary(t, env, "history", "export", "--output-file", export)
	require.NoError(t, err)
	assert.FileExists(t, export+".report_runs.parquet")
	assert.FileExists(t, export+".commit_ownership.parquet")

	_, err = runGitsummary(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "cache.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestBranchesAndLogCommands(t *testing.T) {
	f := newFixture(t)

	out, err := runGitsummary(t, nil, "branches", "--output", "json", f.Clone)
	require.NoError(t, err)
	var branches []schema.RemoteBranch
	require.NoError(t, json.Unmarshal([]byte(out), &branches))
	assert.ElementsMatch(t, []schema.RemoteBranch{
		{Remote: "origin", Name: "main"},
		{Remote: "origin", Name: "feature"},
	}, branches)

	out, err = runGitsummary(t, nil, "log", "--output", "json", f.Clone)
	require.NoError(t, err)
	var commits []schema.CommitRecord
	require.NoError(t, json.Unmarshal([]byte(out), &commits))
	require.Len(t, commits, 2)
	assert.Equal(t, f.OnMain, commits[0].Hash)
}

func TestCheckoutAndFetchCommands(t *testing.T) {
	f := newFixture(t)

	_, err := runGitsummary(t, nil, "fetch", "--all", f.Clone)
	require.NoError(t, err)

	_, err = runGitsummary(t, nil, "checkout", "feature", f.Clone)
	require.NoError(t, err)
	assert.Equal(t, "feature", git(t, f.Clone, "", "rev-parse", "--abbrev-ref", "HEAD"))
}
