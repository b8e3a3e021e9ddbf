package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/iocache"
	"github.com/huangsam/gitsummary/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackend reads the history backend settings. Memory is rejected.
func historyBackend() (schema.DatabaseBackend, string, error) {
	backend, connStr, err := backendFromViper("history-backend", "history-db-connect")
	if err != nil {
		return "", "", err
	}
	if backend == schema.MemoryBackend {
		return "", "", errors.New("report history does not support the memory backend")
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	if err := readConfig(); err != nil {
		return err
	}

	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no detail cache for history commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup resolves the backend without opening the store,
// so migrations can run against a fresh or downgraded database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := readConfig(); err != nil {
		return err
	}

	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend {
		connStr = sqliteFilePath(connStr, contract.GetHistoryDBFilePath())
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on report history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded report runs and commit ownership",
	Long: `Manage the report history store.

When --history-backend is set, every report records:
- Run metadata (repository, git version, initial branch, duration, totals)
- One ownership row per distinct commit (owner branch, branch names, author)

Subcommands:
  status  - Show history statistics and connection info
  clear   - Remove all recorded history
  export  - Export history to Parquet files
  migrate - Run database schema migrations`,
}

// historyClearCmd clears the history store.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded report history",
	Long: `Delete all recorded runs and ownership rows from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history and migration tables`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		path := sqliteFilePath(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(cfg.HistoryBackend, path, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display history statistics and connection details",
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			iocache.PrintHistoryStatus(schema.HistoryStatus{Backend: string(cfg.HistoryBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export report history to Parquet for analytics tools",
	Long: `Export all recorded history to Parquet format.

Writes two files next to --output-file:
  <output-file>.report_runs.parquet
  <output-file>.commit_ownership.parquet

Examples:
  gitsummary history export --history-backend sqlite --output-file history
  duckdb -c "SELECT owner_branch, count(*) FROM read_parquet('history.commit_ownership.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the report history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  gitsummary history migrate --history-backend sqlite

  # Rollback to initial state
  gitsummary history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
