package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/gitsummary/core"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.CacheManager
}

// resolveConfig clones the base config and points it at the requested repository root.
func (h *toolHandler) resolveConfig(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		root, err := h.client.GetRepoRoot(ctx, p)
		if err != nil {
			return nil, err
		}
		cfg.RepoPath = root
	}
	// Tool output is the response body, never files on disk.
	cfg.Trace = contract.TraceConfig{}
	cfg.SpanFile = ""
	return cfg, nil
}

func (h *toolHandler) handleBuildReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.resolveConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}
	cfg.FetchFirst = request.GetBool("fetch", cfg.FetchFirst)

	report, err := core.BuildFullReport(ctx, cfg, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListBranches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.resolveConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}

	_, branches, err := core.ListStructuredBranches(ctx, h.client, cfg.RepoPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("branch listing failed: %v", err)), nil
	}
	if len(branches) == 0 {
		return mcp.NewToolResultError(contract.ErrNoBranches.Error()), nil
	}

	jsonData, _ := json.MarshalIndent(branches, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.resolveConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}

	commits, err := core.GetSummary(ctx, h.client, cfg.RepoPath, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("log failed: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && l < len(commits) {
		commits = commits[:l]
	}

	jsonData, _ := json.MarshalIndent(commits, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
