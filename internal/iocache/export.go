package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/parquet"
)

// ExecuteHistoryExport writes the recorded runs and ownership rows of the global history store to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("history store is not configured; set --history-backend")
	}
	return ExportHistory(store, outputFile)
}

// ExportHistory writes <outputFile>.report_runs.parquet and <outputFile>.commit_ownership.parquet.
func ExportHistory(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no report history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total report runs: %d\n", status.TotalRuns)
	fmt.Printf("Total ownership records: %d\n", status.TableSizes[commitOwnershipTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	ownership, err := store.GetAllOwnership()
	if err != nil {
		return fmt.Errorf("failed to retrieve commit ownership: %w", err)
	}

	parquetRuns := parquet.ConvertReportRunRecords(runs)
	parquetOwnership := parquet.ConvertCommitOwnershipRecords(ownership)

	runsFile := outputFile + ".report_runs.parquet"
	if err := parquet.WriteReportRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	fmt.Printf("Exported %d report runs to: %s\n", len(parquetRuns), runsFile)

	ownershipFile := outputFile + ".commit_ownership.parquet"
	if err := parquet.WriteCommitOwnershipParquet(parquetOwnership, ownershipFile); err != nil {
		return fmt.Errorf("failed to write commit ownership: %w", err)
	}
	fmt.Printf("Exported %d ownership records to: %s\n", len(parquetOwnership), ownershipFile)

	return nil
}
