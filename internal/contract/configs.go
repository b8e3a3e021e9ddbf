package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/gitsummary/schema"
)

// Default values for configuration.
const (
	DefaultQueryTimeout = 5 * time.Minute
	DefaultCommitLimit  = 20
	MaxCommitLimit      = 10000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// TraceConfig controls the on-disk trace of a report run.
type TraceConfig struct {
	Enabled bool
	Folder  string
}

// Config holds the runtime configuration for a report.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath      string
	Workers       int
	GitExecutable string
	QueryTimeout  time.Duration
	Strict        bool
	FetchFirst    bool

	Trace    TraceConfig
	SpanFile string

	Output      schema.OutputMode
	OutputFile  string
	ShowCommits bool
	CommitLimit int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Verbose     bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Workers          int    `mapstructure:"workers"`
	WorkersExtra     int    `mapstructure:"workers-extra"`
	GitExecutable    string `mapstructure:"git-executable"`
	QueryTimeout     string `mapstructure:"query-timeout"`
	Strict           bool   `mapstructure:"strict"`
	TraceFolder      string `mapstructure:"trace-folder"`
	SpanFile         string `mapstructure:"span-file"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Verbose          bool   `mapstructure:"verbose"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from reportCmd.Flags() ---
	Fetch   bool `mapstructure:"fetch"`
	Commits bool `mapstructure:"commits"`
	Limit   int  `mapstructure:"limit"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path, non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.GitExecutable = ResolveGitExecutable(input.GitExecutable)
	cfg.Strict = input.Strict
	cfg.FetchFirst = input.Fetch
	cfg.SpanFile = strings.TrimSpace(input.SpanFile)
	cfg.OutputFile = input.OutputFile
	cfg.ShowCommits = input.Commits
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	folder := strings.TrimSpace(input.TraceFolder)
	cfg.Trace = TraceConfig{Enabled: folder != "", Folder: folder}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- Workers ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	if input.WorkersExtra < 0 {
		return fmt.Errorf("workers-extra cannot be negative (received %d)", input.WorkersExtra)
	}
	cfg.Workers = input.Workers + input.WorkersExtra

	// --- Query timeout ---
	cfg.QueryTimeout = DefaultQueryTimeout
	if s := strings.TrimSpace(input.QueryTimeout); s != "" {
		if s == "0" {
			cfg.QueryTimeout = 0
		} else {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("invalid query-timeout '%s': %w", input.QueryTimeout, err)
			}
			if d < 0 {
				return fmt.Errorf("query-timeout cannot be negative (received %s)", d)
			}
			cfg.QueryTimeout = d
		}
	}

	// --- Commit limit ---
	cfg.CommitLimit = DefaultCommitLimit
	if input.Limit != 0 {
		if input.Limit < 0 || input.Limit > MaxCommitLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxCommitLimit, input.Limit)
		}
		cfg.CommitLimit = input.Limit
	}

	// --- Output ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, yaml, csv, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, memory, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok || cfg.HistoryBackend == schema.MemoryBackend {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Validate that cache and history use different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// resolveRepoPath turns the positional path into the repository root.
// Outside strict mode an unusable path is kept as given; the report records the failure.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)
	cfg.RepoPath = absSearchPath

	info, statErr := os.Stat(absSearchPath)
	if statErr != nil {
		if cfg.Strict {
			return fmt.Errorf("repository path %q is unusable: %w", absSearchPath, statErr)
		}
		LogWarn("Repository path is unusable", statErr)
		return nil
	}

	gitContextPath := absSearchPath
	if !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
		cfg.RepoPath = gitContextPath
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		if cfg.Strict {
			return err
		}
		LogWarn("Could not resolve repository root", err)
		return nil
	}
	cfg.RepoPath = gitRoot
	return nil
}
