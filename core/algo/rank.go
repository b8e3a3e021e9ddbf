package algo

import (
	"cmp"
	"slices"
	"time"

	"github.com/huangsam/gitsummary/schema"
)

// RankBranches orders branches in place: descending by oldest commit date, then
// descending by commit count. Remote and branch name break the remaining ties so
// that discovery order never shows through. Branches without commits sort last.
func RankBranches(branches []schema.BranchRecord) {
	slices.SortStableFunc(branches, CompareBranches)
}

// CompareBranches is the ordering used by RankBranches.
func CompareBranches(a, b schema.BranchRecord) int {
	ad, bd := a.OldestCommitDate(), b.OldestCommitDate()
	if c := compareDatesDesc(ad, bd); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CommitCount(), a.CommitCount()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.RemoteName, b.RemoteName); c != 0 {
		return c
	}
	return cmp.Compare(a.BranchName, b.BranchName)
}

// compareDatesDesc orders newer dates first and zero dates after everything else.
func compareDatesDesc(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return b.Compare(a)
}

// EarlierOwner reports whether candidate should own a commit instead of current.
// The earliest known oldest date wins; unknown dates lose to any known one; equal
// dates fall back to the lexicographically smaller branch name.
func EarlierOwner(candidate string, candidateDate time.Time, current string, currentDate time.Time) bool {
	switch {
	case candidateDate.IsZero() && !currentDate.IsZero():
		return false
	case !candidateDate.IsZero() && currentDate.IsZero():
		return true
	case !candidateDate.Equal(currentDate):
		return candidateDate.Before(currentDate)
	}
	return candidate < current
}
