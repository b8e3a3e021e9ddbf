package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/gitsummary/core/algo"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
)

// ListRemotes returns the configured remote names.
func ListRemotes(ctx context.Context, client contract.GitClient, repoPath string) ([]string, error) {
	remotes, err := client.ListRemotes(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}
	return remotes, nil
}

// ListRemoteBranchNames returns the qualified remote branch refs without symbolic HEAD aliases.
func ListRemoteBranchNames(ctx context.Context, client contract.GitClient, repoPath string) ([]string, error) {
	refs, err := client.ListRemoteBranchRefs(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("listing remote branches: %w", err)
	}
	return algo.FilterRemoteBranchRefs(refs), nil
}

// ListStructuredBranches splits every remote branch ref into its remote and name.
// Refs that match no configured remote are dropped.
func ListStructuredBranches(ctx context.Context, client contract.GitClient, repoPath string) ([]string, []schema.RemoteBranch, error) {
	remotes, err := ListRemotes(ctx, client, repoPath)
	if err != nil {
		return nil, nil, err
	}
	refs, err := ListRemoteBranchNames(ctx, client, repoPath)
	if err != nil {
		return remotes, nil, err
	}
	return remotes, structureRefs(refs, remotes), nil
}

func structureRefs(refs, remotes []string) []schema.RemoteBranch {
	branches := make([]schema.RemoteBranch, 0, len(refs))
	for _, ref := range refs {
		if rb, ok := algo.SplitRemoteBranch(ref, remotes); ok {
			branches = append(branches, rb)
		}
	}
	return branches
}

// branchNamesOf reduces qualified refs to their sorted, distinct branch names.
func branchNamesOf(refs, remotes []string) []string {
	var names []string
	for _, rb := range structureRefs(algo.FilterRemoteBranchRefs(refs), remotes) {
		names = append(names, rb.Name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}
