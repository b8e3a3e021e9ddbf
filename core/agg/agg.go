// Package agg merges branch histories, parent graphs and commit details into report branches.
package agg

import (
	"slices"
	"time"

	"github.com/huangsam/gitsummary/core/algo"
	"github.com/huangsam/gitsummary/schema"
)

// Aggregate decorates and orders the branches of a report.
//
// The input is not modified. Running Aggregate again on its own output with the
// same parents and details yields the same result.
func Aggregate(branches []schema.BranchRecord, parents map[string][]string, details map[string]schema.CommitDetail) []schema.BranchRecord {
	out := cloneBranches(branches)

	decorateParents(out, parents)
	membership := unionMembership(out, details)
	owners := resolveOwners(out, membership)
	applyMembership(out, membership, owners)
	algo.RankBranches(out)
	decorateDetails(out, details)

	return out
}

func cloneBranches(branches []schema.BranchRecord) []schema.BranchRecord {
	out := make([]schema.BranchRecord, len(branches))
	for i, b := range branches {
		out[i] = b
		out[i].Commits = make([]schema.CommitRecord, len(b.Commits))
		for j, c := range b.Commits {
			c.ParentHashes = slices.Clone(c.ParentHashes)
			c.BranchNames = slices.Clone(c.BranchNames)
			out[i].Commits[j] = c
		}
	}
	return out
}

// decorateParents sets the parent hashes of every commit found in the graph.
func decorateParents(branches []schema.BranchRecord, parents map[string][]string) {
	for i := range branches {
		for j := range branches[i].Commits {
			c := &branches[i].Commits[j]
			if p, ok := parents[c.Hash]; ok {
				c.ParentHashes = slices.Clone(p)
			}
			if c.ParentHashes == nil {
				c.ParentHashes = []string{}
			}
		}
	}
}

// unionMembership maps each hash to the sorted union of the branches that hold it
// structurally and the branches the containment query reported.
func unionMembership(branches []schema.BranchRecord, details map[string]schema.CommitDetail) map[string][]string {
	sets := make(map[string]map[string]struct{})
	add := func(hash, name string) {
		if name == "" {
			return
		}
		set, ok := sets[hash]
		if !ok {
			set = make(map[string]struct{})
			sets[hash] = set
		}
		set[name] = struct{}{}
	}

	for _, b := range branches {
		for _, c := range b.Commits {
			add(c.Hash, b.BranchName)
			for _, name := range c.BranchNames {
				add(c.Hash, name)
			}
			for _, name := range details[c.Hash].BranchNames {
				add(c.Hash, name)
			}
		}
	}

	membership := make(map[string][]string, len(sets))
	for hash, set := range sets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		slices.Sort(names)
		membership[hash] = names
	}
	return membership
}

// oldestDates returns the earliest known oldest commit date per branch name across remotes.
func oldestDates(branches []schema.BranchRecord) map[string]time.Time {
	dates := make(map[string]time.Time)
	for _, b := range branches {
		d := b.OldestCommitDate()
		if d.IsZero() {
			continue
		}
		if cur, ok := dates[b.BranchName]; !ok || d.Before(cur) {
			dates[b.BranchName] = d
		}
	}
	return dates
}

// resolveOwners picks one owning branch per hash: the candidate whose branch
// started earliest, ties going to the smaller name.
func resolveOwners(branches []schema.BranchRecord, membership map[string][]string) map[string]string {
	dates := oldestDates(branches)
	owners := make(map[string]string, len(membership))
	for hash, names := range membership {
		if len(names) == 0 {
			continue
		}
		owner := names[0]
		for _, name := range names[1:] {
			if algo.EarlierOwner(name, dates[name], owner, dates[owner]) {
				owner = name
			}
		}
		owners[hash] = owner
	}
	return owners
}

// applyMembership writes the merged names and owner onto every occurrence of a hash.
func applyMembership(branches []schema.BranchRecord, membership map[string][]string, owners map[string]string) {
	for i := range branches {
		for j := range branches[i].Commits {
			c := &branches[i].Commits[j]
			c.BranchNames = slices.Clone(membership[c.Hash])
			if c.BranchNames == nil {
				c.BranchNames = []string{}
			}
			c.BranchName = owners[c.Hash]
		}
	}
}

// decorateDetails copies the fetched text and its derived fields.
func decorateDetails(branches []schema.BranchRecord, details map[string]schema.CommitDetail) {
	for i := range branches {
		for j := range branches[i].Commits {
			c := &branches[i].Commits[j]
			d, ok := details[c.Hash]
			if !ok || d.Text == "" {
				continue
			}
			c.DetailText = d.Text
			c.MergeParents = d.MergeParents
			c.Summary = d.Summary
		}
	}
}
