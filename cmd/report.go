package cmd

import (
	"context"
	"time"

	"github.com/huangsam/gitsummary/core"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/outwriter"
	"github.com/huangsam/gitsummary/internal/telemetry"
	"github.com/spf13/cobra"
)

// reportCmd builds the cross-branch commit report.
var reportCmd = &cobra.Command{
	Use:   "report [repo-path]",
	Short: "Summarize all remote branches and resolve the owner of every commit",
	Long: `Enumerate every remote-tracking branch, read their histories concurrently,
fetch the details of each distinct commit and resolve which branch introduced it.

Failures of individual git queries never abort the report. They are listed in the
report's errors so the rest of the repository is still summarized.

Examples:
  # Summarize the current repository
  gitsummary report

  # Include the newest 50 commits of each branch
  gitsummary report --commits --limit 50

  # Refresh remotes first and write JSON
  gitsummary report --fetch --output json --output-file report.json

  # Keep raw git output for inspection
  gitsummary report --trace-folder /tmp/gitsummary-trace`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runReport(rootCtx); err != nil {
			contract.LogFatal("Failed to build report", err)
		}
	},
}

func runReport(ctx context.Context) error {
	var observers []contract.WaveObserver
	if cfg.SpanFile != "" {
		obs, shutdown, err := telemetry.Setup(ctx, cfg.SpanFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				contract.LogWarn("Failed to flush span file", err)
			}
		}()
		observers = append(observers, obs)
	}

	start := time.Now()
	report, err := core.BuildFullReport(ctx, cfg, gitClient, cacheManager, observers...)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(report, cfg, time.Since(start))
}
