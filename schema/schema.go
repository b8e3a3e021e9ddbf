// Package schema has the shared data shapes of a commit report.
package schema

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Report is the cross-branch commit report for one repository.
type Report struct {
	ID               string         `json:"id" yaml:"id"`
	RepositoryFolder string         `json:"repositoryFolder" yaml:"repositoryFolder"`
	ToolVersion      string         `json:"toolVersion" yaml:"toolVersion"`
	InitialBranch    string         `json:"initialBranch" yaml:"initialBranch"`
	StartedAt        time.Time      `json:"startedAt" yaml:"startedAt"`
	FinishedAt       time.Time      `json:"finishedAt" yaml:"finishedAt"`
	Branches         []BranchRecord `json:"branches" yaml:"branches"`
	Errors           []string       `json:"errors" yaml:"errors"`
}

// NewReport returns an empty report for the given folder.
// Branches and Errors are never nil so that serialized reports always carry both lists.
func NewReport(id, folder string) *Report {
	return &Report{
		ID:               id,
		RepositoryFolder: folder,
		Branches:         []BranchRecord{},
		Errors:           []string{},
	}
}

// CommitCount returns the number of commit occurrences across all branches.
func (r *Report) CommitCount() int {
	total := 0
	for _, b := range r.Branches {
		total += len(b.Commits)
	}
	return total
}

// DistinctCommits returns one record per hash, in first-seen order.
func (r *Report) DistinctCommits() []CommitRecord {
	seen := make(map[string]struct{})
	var out []CommitRecord
	for _, b := range r.Branches {
		for _, c := range b.Commits {
			if _, ok := seen[c.Hash]; ok {
				continue
			}
			seen[c.Hash] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// RemoteBranch is a remote-tracking ref split into its remote and branch name.
type RemoteBranch struct {
	Remote string `json:"remote" yaml:"remote"`
	Name   string `json:"name" yaml:"name"`
}

// Ref returns the qualified "remote/name" form.
func (rb RemoteBranch) Ref() string {
	return rb.Remote + "/" + rb.Name
}

// BranchRecord holds one remote branch and its history, newest commit first.
type BranchRecord struct {
	RemoteName string         `json:"remoteName" yaml:"remoteName"`
	BranchName string         `json:"branchName" yaml:"branchName"`
	Commits    []CommitRecord `json:"commits" yaml:"commits"`
}

// Ref returns the qualified "remote/name" form.
func (b BranchRecord) Ref() string {
	return RemoteBranch{Remote: b.RemoteName, Name: b.BranchName}.Ref()
}

// OldestCommitDate is the date of the last commit in the sequence, or the zero time.
func (b BranchRecord) OldestCommitDate() time.Time {
	if len(b.Commits) == 0 {
		return time.Time{}
	}
	return b.Commits[len(b.Commits)-1].CommitDate
}

// CommitCount returns the number of commits in the branch.
func (b BranchRecord) CommitCount() int {
	return len(b.Commits)
}

// ParentsSummary lists the distinct parent counts of the branch commits, ascending, joined by ";".
func (b BranchRecord) ParentsSummary() string {
	counts := make(map[int]struct{})
	for _, c := range b.Commits {
		counts[len(c.ParentHashes)] = struct{}{}
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k)
	}
	return strings.Join(parts, ";")
}

// CommitRecord is one commit as seen from one branch.
type CommitRecord struct {
	Hash         string    `json:"hash" yaml:"hash"`
	CommitDate   time.Time `json:"commitDate" yaml:"commitDate"`
	AuthorName   string    `json:"authorName" yaml:"authorName"`
	AuthorEmail  string    `json:"authorEmail" yaml:"authorEmail"`
	ParentHashes []string  `json:"parentHashes" yaml:"parentHashes"`
	DetailText   string    `json:"detailText,omitempty" yaml:"detailText,omitempty"`
	MergeParents string    `json:"mergeParents,omitempty" yaml:"mergeParents,omitempty"`
	Summary      string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	BranchNames  []string  `json:"branchNames" yaml:"branchNames"`
	BranchName   string    `json:"branchName,omitempty" yaml:"branchName,omitempty"`
}

// IsMerge reports whether the commit has more than one parent.
func (c CommitRecord) IsMerge() bool {
	return len(c.ParentHashes) > 1
}

// ShortHash returns the first n characters of the hash.
func (c CommitRecord) ShortHash(n int) string {
	if len(c.Hash) <= n {
		return c.Hash
	}
	return c.Hash[:n]
}

// CommitDetail is the decoration fetched per distinct hash.
type CommitDetail struct {
	Hash         string   `json:"hash"`
	Text         string   `json:"text"`
	MergeParents string   `json:"mergeParents,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	BranchNames  []string `json:"branchNames,omitempty"`
}
