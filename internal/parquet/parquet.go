// Package parquet provides data structures and functions for exporting commit
// reports and report history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/gitsummary/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun represents a single report run with metadata.
// This struct maps to the gitsummary_report_runs database table.
type ReportRun struct {
	RunID         string     `parquet:"run_id,snappy"`
	RepoPath      string     `parquet:"repo_path,snappy"`
	ToolVersion   string     `parquet:"tool_version,snappy"`
	InitialBranch string     `parquet:"initial_branch,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalBranches int32      `parquet:"total_branches,snappy"`
	TotalCommits  int32      `parquet:"total_commits,snappy"`
	TotalErrors   int32      `parquet:"total_errors,snappy"`
}

// CommitOwnership represents the resolved owner of one commit in one run.
// This struct maps to the gitsummary_commit_ownership database table.
type CommitOwnership struct {
	RunID       string     `parquet:"run_id,snappy"`
	CommitHash  string     `parquet:"commit_hash,snappy"`
	OwnerBranch *string    `parquet:"owner_branch,optional,snappy"`
	BranchNames string     `parquet:"branch_names,snappy"`
	CommitTime  *time.Time `parquet:"commit_time,optional,snappy"`
	AuthorName  string     `parquet:"author_name,snappy"`
	AuthorEmail string     `parquet:"author_email,snappy"`
	Summary     *string    `parquet:"summary,optional,snappy"`
}

// CommitRow is one commit occurrence on one branch of a report.
type CommitRow struct {
	RemoteName   string     `parquet:"remote_name,snappy"`
	BranchName   string     `parquet:"branch_name,snappy"`
	CommitHash   string     `parquet:"commit_hash,snappy"`
	CommitTime   *time.Time `parquet:"commit_time,optional,snappy"`
	AuthorName   string     `parquet:"author_name,snappy"`
	AuthorEmail  string     `parquet:"author_email,snappy"`
	ParentHashes string     `parquet:"parent_hashes,snappy"`
	IsMerge      bool       `parquet:"is_merge,snappy"`
	OwnerBranch  *string    `parquet:"owner_branch,optional,snappy"`
	BranchNames  string     `parquet:"branch_names,snappy"`
	MergeParents *string    `parquet:"merge_parents,optional,snappy"`
	Summary      *string    `parquet:"summary,optional,snappy"`
}

// WriteReportRunsParquet writes a slice of ReportRun structs to a Parquet file.
func WriteReportRunsParquet(data []ReportRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteCommitOwnershipParquet writes a slice of CommitOwnership structs to a Parquet file.
func WriteCommitOwnershipParquet(data []CommitOwnership, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteCommitRows streams report rows as Parquet to w.
func WriteCommitRows(w io.Writer, data []CommitRow) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return write(file, data)
}

// write infers the schema from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertReportRunRecords converts schema.ReportRunRecord to ReportRun for Parquet export.
func ConvertReportRunRecords(records []schema.ReportRunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, record := range records {
		result[i] = ReportRun{
			RunID:         record.RunID,
			RepoPath:      record.RepoPath,
			ToolVersion:   record.ToolVersion,
			InitialBranch: record.InitialBranch,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalBranches: record.TotalBranches,
			TotalCommits:  record.TotalCommits,
			TotalErrors:   record.TotalErrors,
		}
	}
	return result
}

// ConvertCommitOwnershipRecords converts schema.CommitOwnershipRecord to CommitOwnership for Parquet export.
func ConvertCommitOwnershipRecords(records []schema.CommitOwnershipRecord) []CommitOwnership {
	result := make([]CommitOwnership, len(records))
	for i, record := range records {
		result[i] = CommitOwnership{
			RunID:       record.RunID,
			CommitHash:  record.CommitHash,
			OwnerBranch: record.OwnerBranch,
			BranchNames: record.BranchNames,
			CommitTime:  optionalTime(record.CommitTime),
			AuthorName:  record.AuthorName,
			AuthorEmail: record.AuthorEmail,
			Summary:     record.Summary,
		}
	}
	return result
}

// ConvertReport flattens a report into one row per commit occurrence, in report order.
func ConvertReport(report *schema.Report) []CommitRow {
	result := make([]CommitRow, 0, report.CommitCount())
	for _, b := range report.Branches {
		for _, c := range b.Commits {
			result = append(result, CommitRow{
				RemoteName:   b.RemoteName,
				BranchName:   b.BranchName,
				CommitHash:   c.Hash,
				CommitTime:   optionalTime(c.CommitDate),
				AuthorName:   c.AuthorName,
				AuthorEmail:  c.AuthorEmail,
				ParentHashes: strings.Join(c.ParentHashes, " "),
				IsMerge:      c.IsMerge(),
				OwnerBranch:  optionalString(c.BranchName),
				BranchNames:  strings.Join(c.BranchNames, ";"),
				MergeParents: optionalString(c.MergeParents),
				Summary:      optionalString(c.Summary),
			})
		}
	}
	return result
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
