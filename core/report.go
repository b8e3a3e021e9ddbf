// Package core builds cross-branch commit reports from git history.
package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/gitsummary/core/agg"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/tracefile"
	"github.com/huangsam/gitsummary/schema"
)

// BuildFullReport enumerates the remote branches of cfg.RepoPath, fetches their
// histories and then the details of every distinct commit in two bounded waves,
// and aggregates everything into one report.
//
// Failures of sub-operations are recorded in Report.Errors and never abort the
// report. An error is returned only in strict mode, for an unusable repository
// path or a failed git version probe.
func BuildFullReport(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, observers ...contract.WaveObserver) (*schema.Report, error) {
	if cfg.Strict {
		if err := checkRepoPath(cfg.RepoPath); err != nil {
			return nil, err
		}
	}

	report := schema.NewReport(uuid.NewString(), cfg.RepoPath)
	report.StartedAt = time.Now()

	sink := tracefile.New(cfg.Trace, cfg.RepoPath)
	run := &reportRun{
		cfg:    cfg,
		client: client,
		sink:   sink,
		errs:   NewErrorCollector(),
	}
	progress := NewProgressObserver(func(line string) { sink.Append(tracefile.PopulateFile, line) })
	run.obs = append(MultiObserver{progress}, observers...)

	var history contract.HistoryStore
	if mgr != nil {
		run.store = mgr.GetDetailStore()
		history = mgr.GetHistoryStore()
	}

	// --- 1. Sequential lookups ---
	version, err := client.GetVersion(ctx)
	if err != nil {
		if cfg.Strict {
			return nil, fmt.Errorf("git version probe failed: %w", err)
		}
		run.errs.AddTitled("Query git version", err)
	}
	report.ToolVersion = version

	if history != nil {
		if err := history.BeginRun(report.ID, cfg.RepoPath, report.StartedAt); err != nil {
			contract.LogWarn("Report history initialization failed", err)
			history = nil
		}
	}

	if cfg.FetchFirst {
		if err := client.Fetch(ctx, cfg.RepoPath, true); err != nil {
			run.errs.AddTitled("Fetch all remotes", err)
		}
	}

	if branch, err := client.GetCurrentBranch(ctx, cfg.RepoPath); err != nil {
		run.errs.AddTitled("Query current branch", err)
	} else {
		report.InitialBranch = branch
	}

	if sink.Enabled() {
		if _, err := GetSummary(ctx, client, cfg.RepoPath, sink); err != nil {
			contract.LogDebug(fmt.Sprintf("full log trace skipped: %v", err))
		}
	}

	// --- 2. Branch enumeration ---
	remotes, branches, err := ListStructuredBranches(ctx, client, cfg.RepoPath)
	sink.Write(tracefile.RemotesFile, strings.Join(remotes, "\n"))
	if err != nil {
		run.errs.AddTitled("Query git branches", err)
	} else {
		run.remotes = remotes
		refs := make([]string, len(branches))
		for i, rb := range branches {
			refs[i] = rb.Ref()
		}
		sink.Write(tracefile.BranchesFile, strings.Join(refs, "\n"))
	}

	// --- 3. Waves and aggregation ---
	if len(branches) > 0 {
		records, parents := run.fetchHistories(ctx, branches)
		details := run.fetchDetails(ctx, distinctHashes(records))
		report.Branches = agg.Aggregate(records, parents, details)
	} else if err == nil {
		contract.LogDebug(contract.ErrNoBranches.Error())
	}

	report.Errors = run.errs.Errors()
	report.FinishedAt = time.Now()
	sink.WriteJSON(tracefile.FullReportFile, report)

	if history != nil {
		recordHistory(history, report)
	}
	return report, nil
}

// checkRepoPath fails when path is not an existing directory.
func checkRepoPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("repository path %q is unusable: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("repository path %q is unusable: %w", path, contract.ErrNotGitRepo)
	}
	return nil
}

// recordHistory stores the finished run. Failures are logged and otherwise ignored.
func recordHistory(history contract.HistoryStore, report *schema.Report) {
	if err := history.RecordOwnership(report.ID, report.DistinctCommits()); err != nil {
		contract.LogWarn("Failed to record commit ownership", err)
	}
	if err := history.EndRun(report.ID, report.FinishedAt, report); err != nil {
		contract.LogWarn("Failed to finalize report history", err)
	}
}
