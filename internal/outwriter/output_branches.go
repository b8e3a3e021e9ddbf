package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteBranches outputs the structured remote branches.
func WriteBranches(branches []schema.RemoteBranch, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, branches)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, branches)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBranchesCSV(w, branches)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only available for reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBranchesTable(w, branches)
		}, "Wrote table")
	}
}

func writeBranchesCSV(w io.Writer, branches []schema.RemoteBranch) error {
	return writeCSVWithHeader(w, []string{"remote", "branch", "ref"}, func(cw *csv.Writer) error {
		for _, b := range branches {
			if err := cw.Write([]string{b.Remote, b.Name, b.Ref()}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeBranchesTable(w io.Writer, branches []schema.RemoteBranch) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Remote", "Branch"})
	data := make([][]string, len(branches))
	for i, b := range branches {
		data[i] = []string{strconv.Itoa(i + 1), b.Remote, b.Name}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d remote branches\n", len(branches))
	return err
}
