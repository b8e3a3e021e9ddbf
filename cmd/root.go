package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/iocache"
	"github.com/huangsam/gitsummary/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	rootCtx = context.Background()

	// input is what viper resolved from defaults, file, env and flags; cfg is input after validation.
	input = &contract.ConfigRawInput{}
	cfg   = &contract.Config{}

	cacheManager contract.CacheManager
	gitClient    contract.GitClient
)

// defaults for every key that has no flag default of its own.
var defaults = map[string]any{
	"workers":            contract.DefaultWorkers,
	"workers-extra":      0,
	"query-timeout":      contract.DefaultQueryTimeout.String(),
	"limit":              contract.DefaultCommitLimit,
	"output":             schema.TextOut,
	"cache-backend":      schema.NoneBackend,
	"cache-db-connect":   "",
	"history-backend":    "",
	"history-db-connect": "",
	"color":              "yes",
}

var rootCmd = &cobra.Command{
	Use:                "gitsummary",
	Short:              "Summarize every remote branch of a Git repository.",
	Long:               `gitsummary walks all remote branches concurrently and reports which branch each commit belongs to.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func initConfig() {
	viper.SetEnvPrefix("GITSUMMARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Older tooling exported these without the prefix.
	_ = viper.BindEnv("git-executable", "GITSUMMARY_GIT_EXECUTABLE", "GIT_EXECUTABLE")
	_ = viper.BindEnv("trace-folder", "GITSUMMARY_TRACE_FOLDER", "GIT_TRACE_FOLDER")

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// readConfig merges --config, or .gitsummary.yaml from the working or home directory, into viper.
// A missing default file is not an error.
func readConfig() error {
	if file := viper.GetString("config"); file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName(".gitsummary")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// sharedSetup validates the configuration for commands that work on a repository
// and opens the configured stores. The optional positional argument is the repository path.
func sharedSetup(ctx context.Context, _ *cobra.Command, args []string) error {
	if prefix := viper.GetString("profile"); prefix != "" && activeProfiler == nil {
		p, err := startProfiler(prefix)
		if err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
		activeProfiler = p
	}

	if err := readConfig(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.RepoPathStr = "."
	if len(args) == 1 {
		input.RepoPathStr = args[0]
	}

	// Validation needs git before the configured timeout is known.
	probe := contract.NewLocalGitClient(input.GitExecutable, contract.DefaultQueryTimeout)
	if err := contract.ProcessAndValidate(ctx, cfg, probe, input); err != nil {
		return err
	}
	contract.SetVerbose(cfg.Verbose)
	gitClient = contract.NewLocalGitClient(cfg.GitExecutable, cfg.QueryTimeout)

	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}
