// Package cmd defines the command-line interface for gitsummary.
package cmd

import (
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent git queries")
	rootCmd.PersistentFlags().Int("workers-extra", 0, "Additional workers on top of --workers")
	rootCmd.PersistentFlags().String("query-timeout", contract.DefaultQueryTimeout.String(), "Timeout for each git query (0 disables)")
	rootCmd.PersistentFlags().String("git-executable", "", "Path to the git executable (default: $GIT_EXECUTABLE or git)")
	rootCmd.PersistentFlags().Bool("strict", false, "Fail on an unusable repository path or a failed git version probe")
	rootCmd.PersistentFlags().String("trace-folder", "", "Write raw git output and progress logs under this folder")
	rootCmd.PersistentFlags().String("span-file", "", "Export OpenTelemetry spans of the report waves to this file")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or yaml or csv or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Commit detail cache backend: sqlite or mysql or postgresql or memory or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Report history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for report history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().Bool("fetch", false, "Run git fetch --all before building the report")
	reportCmd.Flags().Bool("commits", false, "Print the commits of every branch in text output")
	reportCmd.Flags().IntP("limit", "l", contract.DefaultCommitLimit, "Commits per branch in text output")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of fetchCmd to Viper
	fetchCmd.Flags().Bool("pull", false, "Pull the current branch instead of only fetching")
	fetchCmd.Flags().Bool("all", false, "Fetch from every remote")
	if err := viper.BindPFlags(fetchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fetch flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
