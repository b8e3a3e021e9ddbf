// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gitsummary MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Git Summary Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("build_report",
		mcp.WithDescription("Summarize every remote branch of a repository with per-commit ownership."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithBoolean("fetch", mcp.Description("Fetch all remotes before building the report.")),
	), h.handleBuildReport)

	s.AddTool(mcp.NewTool("list_branches",
		mcp.WithDescription("List remote-tracking branches split into remote and branch name."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
	), h.handleListBranches)

	s.AddTool(mcp.NewTool("get_log",
		mcp.WithDescription("List the commits reachable from the current HEAD, newest first."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of commits returned.")),
	), h.handleGetLog)

	return s
}

// StartMCPServer starts the gitsummary MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, client, mgr)
	return server.ServeStdio(s)
}
