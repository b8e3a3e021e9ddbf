package cmd

import (
	"fmt"

	"github.com/huangsam/gitsummary/core"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fetchCmd refreshes remote-tracking refs before a report.
var fetchCmd = &cobra.Command{
	Use:   "fetch [repo-path]",
	Short: "Fetch remote refs, or pull the current branch with --pull",
	Long: `Update the remote-tracking branches that a report reads.

Examples:
  # Fetch every remote
  gitsummary fetch --all

  # Pull the current branch
  gitsummary fetch --pull`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		pull := viper.GetBool("pull")
		if err := core.FetchPull(rootCtx, gitClient, cfg.RepoPath, pull, viper.GetBool("all")); err != nil {
			contract.LogFatal("Failed to update repository", err)
		}
		fmt.Printf("Repository %s updated.\n", cfg.RepoPath)
	},
}

// checkoutCmd switches the working tree to a branch.
var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch> [repo-path]",
	Short: "Switch the working tree to a branch",
	Args:  cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args[1:])
	},
	Run: func(_ *cobra.Command, args []string) {
		if err := core.Checkout(rootCtx, gitClient, cfg.RepoPath, args[0]); err != nil {
			contract.LogFatal("Failed to check out branch", err)
		}
		fmt.Printf("Switched to %s.\n", args[0])
	},
}
