package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/huangsam/gitsummary/core/algo"
	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/tracefile"
	"github.com/huangsam/gitsummary/schema"
)

// reportRun carries the collaborators of one BuildFullReport call through its waves.
type reportRun struct {
	cfg     *contract.Config
	client  contract.GitClient
	store   contract.CacheStore
	sink    contract.TraceSink
	obs     contract.WaveObserver
	errs    *ErrorCollector
	remotes []string
}

// fetchBranchCommits returns the history of ref, newest first.
func (r *reportRun) fetchBranchCommits(ctx context.Context, ref string) ([]schema.CommitRecord, error) {
	out, err := r.client.GetBranchLog(ctx, r.cfg.RepoPath, ref)
	if err != nil {
		return nil, err
	}
	r.sink.Write(tracefile.BranchLogName(ref), string(out))
	return algo.ParseCommitLog(out), nil
}

// fetchParentGraph returns the parents of every commit reachable from ref.
func (r *reportRun) fetchParentGraph(ctx context.Context, ref string) (map[string][]string, error) {
	out, err := r.client.GetParentGraph(ctx, r.cfg.RepoPath, ref)
	if err != nil {
		return nil, err
	}
	return algo.ParseParentGraph(out), nil
}

// fetchHistories runs the branch wave. Worker i is the only writer of records[i] and graphs[i].
// A branch whose log cannot be read keeps an empty commit list and records one error.
func (r *reportRun) fetchHistories(ctx context.Context, branches []schema.RemoteBranch) ([]schema.BranchRecord, map[string][]string) {
	records := make([]schema.BranchRecord, len(branches))
	graphs := make([]map[string][]string, len(branches))

	indexes := make([]int, len(branches))
	for i := range indexes {
		indexes[i] = i
	}

	r.obs.WaveStarted(BranchWave, len(branches))
	Dispatch(indexes, r.cfg.Workers, func(i int) {
		rb := branches[i]
		ref := rb.Ref()
		records[i] = schema.BranchRecord{RemoteName: rb.Remote, BranchName: rb.Name, Commits: []schema.CommitRecord{}}

		commits := attempt(fmt.Sprintf("Query git log for branch %s", ref), func() ([]schema.CommitRecord, error) {
			return r.fetchBranchCommits(ctx, ref)
		})
		if !commits.Record(r.errs) {
			r.obs.ItemCompleted(BranchWave, "Branch '"+ref+"'", commits.Err)
			return
		}
		records[i].Commits = commits.Value

		graph := attempt(fmt.Sprintf("Query parent graph for branch %s", ref), func() (map[string][]string, error) {
			return r.fetchParentGraph(ctx, ref)
		})
		if graph.Record(r.errs) {
			graphs[i] = graph.Value
		}
		r.obs.ItemCompleted(BranchWave, "Branch '"+ref+"'", graph.Err)
	})
	r.obs.WaveFinished(BranchWave)

	parents := make(map[string][]string)
	for _, g := range graphs {
		maps.Copy(parents, g)
	}
	return records, parents
}

// distinctHashes returns every commit hash of the branches once, in first-seen order.
func distinctHashes(branches []schema.BranchRecord) []string {
	seen := make(map[string]struct{})
	var hashes []string
	for _, b := range branches {
		for _, c := range b.Commits {
			if _, ok := seen[c.Hash]; ok {
				continue
			}
			seen[c.Hash] = struct{}{}
			hashes = append(hashes, c.Hash)
		}
	}
	return hashes
}
