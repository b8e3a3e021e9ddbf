package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/huangsam/gitsummary/core/algo"
	"github.com/huangsam/gitsummary/internal/tracefile"
	"github.com/huangsam/gitsummary/schema"
)

// detailMap is the hash keyed result of the commit wave.
// Each key is written at most once, by the worker that owns the hash.
type detailMap struct {
	m sync.Map
}

// store saves detail and reports whether the hash was new.
func (d *detailMap) store(detail schema.CommitDetail) bool {
	_, loaded := d.m.LoadOrStore(detail.Hash, detail)
	return !loaded
}

// snapshot copies the map once the wave has drained.
func (d *detailMap) snapshot() map[string]schema.CommitDetail {
	out := make(map[string]schema.CommitDetail)
	d.m.Range(func(k, v any) bool {
		out[k.(string)] = v.(schema.CommitDetail)
		return true
	})
	return out
}

// fetchDetailText returns the change description of hash.
func (r *reportRun) fetchDetailText(ctx context.Context, hash string) (string, error) {
	out, err := cachedCommitDetail(ctx, r.client, r.store, r.cfg.RepoPath, hash)
	if err != nil {
		return "", err
	}
	text := string(out)
	r.sink.Write(tracefile.CommitName(hash), text)
	return text, nil
}

// fetchContainingBranches returns the sorted names of the remote branches containing hash.
func (r *reportRun) fetchContainingBranches(ctx context.Context, hash string) ([]string, error) {
	refs, err := r.client.ListContainingBranchRefs(ctx, r.cfg.RepoPath, hash)
	if err != nil {
		return nil, err
	}
	return branchNamesOf(refs, r.remotes), nil
}

// fetchDetails runs the commit wave over unique hashes. The text and the
// membership query fail independently; a hash keeps whichever part succeeded.
func (r *reportRun) fetchDetails(ctx context.Context, hashes []string) map[string]schema.CommitDetail {
	var details detailMap

	r.obs.WaveStarted(CommitWave, len(hashes))
	Dispatch(hashes, r.cfg.Workers, func(hash string) {
		text := attempt(fmt.Sprintf("Query commit details for %s", hash), func() (string, error) {
			return r.fetchDetailText(ctx, hash)
		})
		names := attempt(fmt.Sprintf("Query branches containing %s", hash), func() ([]string, error) {
			return r.fetchContainingBranches(ctx, hash)
		})

		detail := schema.CommitDetail{Hash: hash}
		if text.Record(r.errs) {
			detail.Text = text.Value
			detail.MergeParents, detail.Summary = algo.ParseDetail(text.Value)
		}
		if names.Record(r.errs) {
			detail.BranchNames = names.Value
		}
		if text.OK() || names.OK() {
			details.store(detail)
		}

		item := fmt.Sprintf("Commit %s Branch='%s'", hash, strings.Join(detail.BranchNames, ", "))
		r.obs.ItemCompleted(CommitWave, item, errors.Join(text.Err, names.Err))
	})
	r.obs.WaveFinished(CommitWave)

	return details.snapshot()
}
