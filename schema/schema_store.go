package schema

import "time"

// ReportRunRecord represents a row from the gitsummary_report_runs table.
type ReportRunRecord struct {
	RunID         string
	RepoPath      string
	ToolVersion   string
	InitialBranch string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalBranches int32
	TotalCommits  int32
	TotalErrors   int32
}

// CommitOwnershipRecord represents a row from the gitsummary_commit_ownership table.
type CommitOwnershipRecord struct {
	RunID       string
	CommitHash  string
	OwnerBranch *string
	BranchNames string // semicolon-joined
	CommitTime  time.Time
	AuthorName  string
	AuthorEmail string
	Summary     *string
}
