package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/gitsummary/internal/contract"
	mcp_internal "github.com/huangsam/gitsummary/internal/mcp"
	"github.com/huangsam/gitsummary/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const repoRoot = "/work/repo"

const headLog = "c2 │ Tue 2024-01-02 00:00:00 +0000 │ Tue, 2 Jan 2024 00:00:00 +0000 │ 2024-01-02T00:00:00Z │ Bob │ bob@example.com\n" +
	"c1 │ Mon 2024-01-01 00:00:00 +0000 │ Mon, 1 Jan 2024 00:00:00 +0000 │ 2024-01-01T00:00:00Z │ Ann │ ann@example.com"

func newClient() *contract.MockGitClient {
	m := &contract.MockGitClient{}
	m.On("GetRepoRoot", mock.Anything, "/work/repo/sub").Return(repoRoot, nil).Maybe()
	m.On("GetRepoRoot", mock.Anything, "/tmp/plain").Return("", contract.ErrNotGitRepo).Maybe()
	m.On("GetVersion", mock.Anything).Return("git version 2.45.0", nil).Maybe()
	m.On("GetCurrentBranch", mock.Anything, repoRoot).Return("main", nil).Maybe()
	m.On("ListRemotes", mock.Anything, repoRoot).Return([]string{"origin"}, nil).Maybe()
	m.On("ListRemoteBranchRefs", mock.Anything, repoRoot).Return([]string{"origin/HEAD", "origin/main"}, nil).Maybe()
	m.On("GetBranchLog", mock.Anything, repoRoot, mock.Anything).Return([]byte(headLog), nil).Maybe()
	m.On("GetParentGraph", mock.Anything, repoRoot, "origin/main").Return([]byte("c2 c1\nc1\n"), nil).Maybe()
	m.On("GetCommitDetail", mock.Anything, repoRoot, mock.Anything).Return([]byte("commit\n\n\n a.txt | 1 +\n"), nil).Maybe()
	m.On("ListContainingBranchRefs", mock.Anything, repoRoot, mock.Anything).Return([]string{"origin/main"}, nil).Maybe()
	return m
}

func callTool(t *testing.T, client contract.GitClient, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(&contract.Config{RepoPath: repoRoot, Workers: 2}, client, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestBuildReportTool(t *testing.T) {
	res := callTool(t, newClient(), "build_report", map[string]any{"repo_path": "/work/repo/sub"})
	require.False(t, res.IsError, text(res))

	var report schema.Report
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	assert.Equal(t, repoRoot, report.RepositoryFolder)
	assert.Equal(t, "main", report.InitialBranch)
	require.Len(t, report.Branches, 1)
	assert.Equal(t, "main", report.Branches[0].BranchName)
	assert.Len(t, report.Branches[0].Commits, 2)
}

func TestBuildReportTool_InvalidRepository(t *testing.T) {
	res := callTool(t, newClient(), "build_report", map[string]any{"repo_path": "/tmp/plain"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "not a git repository")
}

func TestListBranchesTool(t *testing.T) {
	res := callTool(t, newClient(), "list_branches", nil)
	require.False(t, res.IsError, text(res))

	var branches []schema.RemoteBranch
	require.NoError(t, json.Unmarshal([]byte(text(res)), &branches))
	assert.Equal(t, []schema.RemoteBranch{{Remote: "origin", Name: "main"}}, branches)
}

func TestListBranchesTool_Failures(t *testing.T) {
	t.Run("no branches", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("ListRemotes", mock.Anything, repoRoot).Return([]string{"origin"}, nil)
		client.On("ListRemoteBranchRefs", mock.Anything, repoRoot).Return([]string{"origin/HEAD"}, nil)

		res := callTool(t, client, "list_branches", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), contract.ErrNoBranches.Error())
	})

	t.Run("git failure", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("ListRemotes", mock.Anything, repoRoot).Return(nil, errors.New("exit status 128"))

		res := callTool(t, client, "list_branches", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "exit status 128")
	})
}

func TestGetLogTool(t *testing.T) {
	res := callTool(t, newClient(), "get_log", map[string]any{"limit": 1.0})
	require.False(t, res.IsError, text(res))

	var commits []schema.CommitRecord
	require.NoError(t, json.Unmarshal([]byte(text(res)), &commits))
	require.Len(t, commits, 1)
	assert.Equal(t, "c2", commits[0].Hash)
	assert.Equal(t, "Bob", commits[0].AuthorName)
}
