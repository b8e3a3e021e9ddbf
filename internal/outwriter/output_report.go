package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/parquet"
	"github.com/huangsam/gitsummary/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const shortHashLen = 10

// WriteReport outputs a commit report, dispatching based on the output format configured.
func WriteReport(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteCommitRows(w, parquet.ConvertReport(report))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, report, cfg, duration)
		}, "Wrote table")
	}
}

// reportCSVHeader has one column per commit occurrence field.
var reportCSVHeader = []string{
	"remote", "branch", "hash", "commit_date", "author_name", "author_email",
	"parents", "owner", "branch_names", "summary",
}

// writeReportCSV writes one row per commit occurrence, in report order.
func writeReportCSV(w io.Writer, report *schema.Report) error {
	return writeCSVWithHeader(w, reportCSVHeader, func(cw *csv.Writer) error {
		for _, b := range report.Branches {
			for _, c := range b.Commits {
				rec := []string{
					b.RemoteName,
					b.BranchName,
					c.Hash,
					formatDate(c.CommitDate),
					c.AuthorName,
					c.AuthorEmail,
					strings.Join(c.ParentHashes, " "),
					c.BranchName,
					strings.Join(c.BranchNames, ";"),
					c.Summary,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeReportText renders the branch overview, the optional per-branch commit tables and the errors.
func writeReportText(w io.Writer, report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	colors := newPalette(cfg.UseColors)

	if _, err := fmt.Fprintf(w, "Repository: %s (%s, initial branch %s)\n", report.RepositoryFolder, report.ToolVersion, report.InitialBranch); err != nil {
		return err
	}
	if err := writeBranchOverview(w, report); err != nil {
		return err
	}

	if cfg.ShowCommits {
		for _, b := range report.Branches {
			if len(b.Commits) == 0 {
				continue
			}
			if err := writeBranchCommits(w, b, cfg, colors); err != nil {
				return err
			}
		}
	}

	for _, e := range report.Errors {
		if _, err := fmt.Fprintln(w, colors.failure("error: "+e)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d branches, %d distinct commits, %d errors. Report %s completed in %v with %d workers. Cache backend: %s\n",
		len(report.Branches), len(report.DistinctCommits()), len(report.Errors), report.ID, duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeBranchOverview lists every branch in report order.
func writeBranchOverview(w io.Writer, report *schema.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Remote", "Branch", "Commits", "Oldest Commit", "Parents"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(report.Branches))
	for i, b := range report.Branches {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			b.RemoteName,
			b.BranchName,
			strconv.Itoa(b.CommitCount()),
			formatDate(b.OldestCommitDate()),
			b.ParentsSummary(),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeBranchCommits lists up to cfg.CommitLimit commits of one branch, highlighting the ones it owns.
func writeBranchCommits(w io.Writer, b schema.BranchRecord, cfg *contract.Config, colors palette) error {
	if _, err := fmt.Fprintf(w, "\n%s (%d commits)\n", b.Ref(), b.CommitCount()); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Hash", "Date", "Author", "Owner", "Summary"})

	summaryWidth := getMaxTextWidth(cfg, 80)
	limit := min(len(b.Commits), cfg.CommitLimit)
	data := make([][]string, 0, limit)
	for _, c := range b.Commits[:limit] {
		owner := c.BranchName
		switch {
		case owner == b.BranchName:
			owner = colors.owner(owner)
		case owner == "":
			owner = colors.muted("-")
		}
		hash := c.ShortHash(shortHashLen)
		if c.IsMerge() {
			hash = colors.merge(hash)
		}
		data = append(data, []string{
			hash,
			formatDate(c.CommitDate),
			contract.TruncateText(c.AuthorName, 24),
			owner,
			contract.TruncateText(c.Summary, summaryWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if hidden := len(b.Commits) - limit; hidden > 0 {
		if _, err := fmt.Fprintf(w, "... %d more commits\n", hidden); err != nil {
			return err
		}
	}
	return nil
}

// formatDate renders a commit date, or "unknown" for the zero time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(contract.DateTimeFormat)
}
