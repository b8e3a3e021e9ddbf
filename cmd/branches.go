package cmd

import (
	"github.com/huangsam/gitsummary/core"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/outwriter"
	"github.com/spf13/cobra"
)

// branchesCmd lists the remote branches a report would cover.
var branchesCmd = &cobra.Command{
	Use:   "branches [repo-path]",
	Short: "List remote-tracking branches split into remote and name",
	Long: `List every remote-tracking branch except symbolic HEAD aliases.

Each ref is matched against the configured remotes in git's order, so a remote
whose name contains a slash is still split correctly.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		_, branches, err := core.ListStructuredBranches(rootCtx, gitClient, cfg.RepoPath)
		if err != nil {
			contract.LogFatal("Failed to list branches", err)
		}
		if len(branches) == 0 {
			contract.LogWarn("Nothing to list", contract.ErrNoBranches)
		}
		if err := outwriter.NewOutWriter().WriteBranches(branches, cfg); err != nil {
			contract.LogFatal("Failed to write branches", err)
		}
	},
}
