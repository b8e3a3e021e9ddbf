package core

import (
	"context"
	"fmt"

	"github.com/huangsam/gitsummary/core/algo"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/tracefile"
	"github.com/huangsam/gitsummary/schema"
)

// GetSummary lists the history of HEAD, newest first, tracing the raw log when sink is enabled.
func GetSummary(ctx context.Context, client contract.GitClient, repoPath string, sink contract.TraceSink) ([]schema.CommitRecord, error) {
	out, err := client.GetBranchLog(ctx, repoPath, "")
	if err != nil {
		return nil, fmt.Errorf("query git log for %s: %w", repoPath, err)
	}
	if sink != nil {
		sink.Write(tracefile.FullLogFile, string(out))
	}
	return algo.ParseCommitLog(out), nil
}

// Checkout switches the working tree of repoPath to branch.
func Checkout(ctx context.Context, client contract.GitClient, repoPath, branch string) error {
	if err := client.Checkout(ctx, repoPath, branch); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return nil
}

// FetchPull fetches remote refs and, when pull is set, integrates the current branch.
func FetchPull(ctx context.Context, client contract.GitClient, repoPath string, pull, all bool) error {
	if pull {
		if err := client.Pull(ctx, repoPath, all); err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		return nil
	}
	if err := client.Fetch(ctx, repoPath, all); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}
