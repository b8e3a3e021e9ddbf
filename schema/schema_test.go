package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBranchRecordDerivedFields(t *testing.T) {
	newest := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	oldest := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("oldest is last element", func(t *testing.T) {
		b := BranchRecord{
			RemoteName: "origin",
			BranchName: "main",
			Commits: []CommitRecord{
				{Hash: "b", CommitDate: newest},
				{Hash: "a", CommitDate: oldest},
			},
		}
		assert.Equal(t, oldest, b.OldestCommitDate())
		assert.Equal(t, 2, b.CommitCount())
		assert.Equal(t, "origin/main", b.Ref())
	})

	t.Run("empty branch", func(t *testing.T) {
		b := BranchRecord{RemoteName: "origin", BranchName: "empty"}
		assert.True(t, b.OldestCommitDate().IsZero())
		assert.Equal(t, 0, b.CommitCount())
		assert.Equal(t, "", b.ParentsSummary())
	})
}

func TestParentsSummary(t *testing.T) {
	b := BranchRecord{Commits: []CommitRecord{
		{Hash: "m", ParentHashes: []string{"a", "b"}},
		{Hash: "c", ParentHashes: []string{"a"}},
		{Hash: "d", ParentHashes: []string{"a"}},
		{Hash: "a"},
	}}
	assert.Equal(t, "0;1;2", b.ParentsSummary())
}

func TestReportDistinctCommits(t *testing.T) {
	r := NewReport("id", "/repo")
	assert.NotNil(t, r.Branches)
	assert.NotNil(t, r.Errors)

	r.Branches = []BranchRecord{
		{BranchName: "main", Commits: []CommitRecord{{Hash: "b"}, {Hash: "a"}}},
		{BranchName: "dev", Commits: []CommitRecord{{Hash: "c"}, {Hash: "a"}}},
	}
	assert.Equal(t, 4, r.CommitCount())

	distinct := r.DistinctCommits()
	hashes := make([]string, len(distinct))
	for i, c := range distinct {
		hashes[i] = c.Hash
	}
	assert.Equal(t, []string{"b", "a", "c"}, hashes)
}

func TestCommitRecordHelpers(t *testing.T) {
	c := CommitRecord{Hash: "0123456789abcdef", ParentHashes: []string{"x", "y"}}
	assert.True(t, c.IsMerge())
	assert.Equal(t, "01234567", c.ShortHash(8))
	assert.Equal(t, "0123456789abcdef", c.ShortHash(40))
}
