// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gitsummary/schema"
)

// GitClient defines the git queries needed to build a commit report.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Exec runs one git invocation and returns everything it produced.
	// It never fails on its own; callers decide what counts as success.
	Exec(ctx context.Context, repoPath string, args ...string) *ExecResult

	// Run executes a git command and returns stdout, failing on timeout or non-zero exit.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository Metadata ---

	// GetVersion returns the first line of `git --version`.
	GetVersion(ctx context.Context) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetCurrentBranch returns the abbreviated name of HEAD.
	GetCurrentBranch(ctx context.Context, repoPath string) (string, error)

	// --- Branch Listing ---

	// ListRemotes returns the configured remote names in git's order.
	ListRemotes(ctx context.Context, repoPath string) ([]string, error)

	// ListRemoteBranchRefs returns every remote-tracking ref as "remote/name", unfiltered.
	ListRemoteBranchRefs(ctx context.Context, repoPath string) ([]string, error)

	// ListContainingBranchRefs returns the remote-tracking refs whose history contains hash.
	ListContainingBranchRefs(ctx context.Context, repoPath string, hash string) ([]string, error)

	// --- History ---

	// GetBranchLog returns the delimited one-row-per-commit log of ref, newest first.
	// An empty ref lists the history of HEAD.
	GetBranchLog(ctx context.Context, repoPath string, ref string) ([]byte, error)

	// GetParentGraph returns "hash parent..." rows for every commit reachable from ref.
	GetParentGraph(ctx context.Context, repoPath string, ref string) ([]byte, error)

	// GetCommitDetail returns the message and change statistics of one commit.
	GetCommitDetail(ctx context.Context, repoPath string, hash string) ([]byte, error)

	// --- Scaffolding ---

	// Checkout switches the working tree to branch.
	Checkout(ctx context.Context, repoPath string, branch string) error

	// Fetch downloads refs from the default remote, or every remote when all is set.
	Fetch(ctx context.Context, repoPath string, all bool) error

	// Pull fetches and integrates the current branch.
	Pull(ctx context.Context, repoPath string, all bool) error
}

// CacheManager defines the interface for managing the persistent stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetDetailStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording report runs.
type HistoryStore interface {
	// BeginRun records the start of a report run.
	BeginRun(runID string, repoPath string, startTime time.Time) error

	// EndRun completes a run with the numbers of the finished report.
	EndRun(runID string, endTime time.Time, report *schema.Report) error

	// RecordOwnership stores one row per distinct commit of the report.
	RecordOwnership(runID string, commits []schema.CommitRecord) error

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns retrieves every recorded run.
	GetAllRuns() ([]schema.ReportRunRecord, error)

	// GetAllOwnership retrieves every recorded commit ownership row.
	GetAllOwnership() ([]schema.CommitOwnershipRecord, error)

	// Close closes the underlying connection.
	Close() error
}

// WaveObserver receives discrete progress events from the concurrent report waves.
// Implementations must be safe for concurrent use.
type WaveObserver interface {
	WaveStarted(wave string, total int)
	ItemCompleted(wave string, item string, err error)
	WaveFinished(wave string)
}

// TraceSink persists diagnostic text for a report run. Failures are never reported.
type TraceSink interface {
	Enabled() bool
	Write(name string, payload string)
	Append(name string, line string)
	WriteJSON(name string, v any)
}
