package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteLog outputs the parsed history of HEAD, newest first.
func WriteLog(commits []schema.CommitRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, commits)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, commits)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLogCSV(w, commits)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only available for reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLogTable(w, commits, cfg)
		}, "Wrote table")
	}
}

func writeLogCSV(w io.Writer, commits []schema.CommitRecord) error {
	return writeCSVWithHeader(w, []string{"hash", "commit_date", "author_name", "author_email"}, func(cw *csv.Writer) error {
		for _, c := range commits {
			if err := cw.Write([]string{c.Hash, formatDate(c.CommitDate), c.AuthorName, c.AuthorEmail}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeLogTable(w io.Writer, commits []schema.CommitRecord, cfg *contract.Config) error {
	limit := min(len(commits), cfg.CommitLimit)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Hash", "Date", "Author", "Email"})
	emailWidth := getMaxTextWidth(cfg, 60)
	data := make([][]string, 0, limit)
	for _, c := range commits[:limit] {
		data = append(data, []string{
			c.ShortHash(shortHashLen),
			formatDate(c.CommitDate),
			contract.TruncateText(c.AuthorName, 24),
			contract.TruncateText(c.AuthorEmail, emailWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d commits\n", limit, len(commits))
	return err
}
