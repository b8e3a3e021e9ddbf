package cmd

import (
	"github.com/huangsam/gitsummary/core"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/outwriter"
	"github.com/huangsam/gitsummary/internal/tracefile"
	"github.com/spf13/cobra"
)

// logCmd prints the history of HEAD with the report's row parser.
var logCmd = &cobra.Command{
	Use:     "log [repo-path]",
	Short:   "Print the history of the current HEAD",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sink := tracefile.New(cfg.Trace, cfg.RepoPath)
		commits, err := core.GetSummary(rootCtx, gitClient, cfg.RepoPath, sink)
		if err != nil {
			contract.LogFatal("Failed to read history", err)
		}
		if err := outwriter.NewOutWriter().WriteLog(commits, cfg); err != nil {
			contract.LogFatal("Failed to write history", err)
		}
	},
}
