package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
)

// Table names for report history.
const (
	reportRunsTable      = "gitsummary_report_runs"
	commitOwnershipTable = "gitsummary_commit_ownership"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{reportRunsTable, commitOwnershipTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history database and brings its schema up to date.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	switch backend {
	case schema.NoneBackend:
		return &HistoryStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported history backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func (hs *HistoryStoreImpl) table(name string) string {
	return quoteTableName(name, hs.backend)
}

// BeginRun records the start of a report run.
func (hs *HistoryStoreImpl) BeginRun(runID string, repoPath string, startTime time.Time) error {
	if hs.db == nil {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, repo_path, start_time) VALUES (%s)`,
		hs.table(reportRunsTable), placeholders(hs.backend, 3))
	if _, err := hs.db.Exec(query, runID, repoPath, formatTime(startTime, hs.backend)); err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

// EndRun completes a run with the numbers of the finished report.
func (hs *HistoryStoreImpl) EndRun(runID string, endTime time.Time, report *schema.Report) error {
	if hs.db == nil {
		return nil
	}

	var start timeColumn
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`,
		hs.table(reportRunsTable), placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(selectQuery, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	var toolVersion, initialBranch string
	var branches, commits, errs int
	if report != nil {
		toolVersion = report.ToolVersion
		initialBranch = report.InitialBranch
		branches = len(report.Branches)
		commits = len(report.DistinctCommits())
		errs = len(report.Errors)
	}

	p := func(i int) string { return placeholder(hs.backend, i) }
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, tool_version = %s, initial_branch = %s,
		total_branches = %s, total_commits = %s, total_errors = %s WHERE run_id = %s`,
		hs.table(reportRunsTable), p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8))
	_, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, toolVersion, initialBranch,
		branches, commits, errs, runID)
	if err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// RecordOwnership stores one row per distinct commit of the report, in a single transaction.
func (hs *HistoryStoreImpl) RecordOwnership(runID string, commits []schema.CommitRecord) error {
	if hs.db == nil || len(commits) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin ownership transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, commit_hash, owner_branch, branch_names, commit_time, author_name, author_email, summary)
		VALUES (%s)`, hs.table(commitOwnershipTable), placeholders(hs.backend, 8))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare ownership insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range commits {
		var commitTime any
		if !c.CommitDate.IsZero() {
			commitTime = formatTime(c.CommitDate, hs.backend)
		}
		_, err := stmt.Exec(runID, c.Hash, nullString(c.BranchName), strings.Join(c.BranchNames, ";"),
			commitTime, c.AuthorName, c.AuthorEmail, nullString(c.Summary))
		if err != nil {
			return fmt.Errorf("failed to insert ownership of %s: %w", c.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ownership rows: %w", err)
	}
	return nil
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runs := hs.table(reportRunsTable)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeColumn
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", runs)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runs)
		if err := hs.db.QueryRow(oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		commitsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_commits), 0) FROM %s", runs)
		if err := hs.db.QueryRow(commitsQuery).Scan(&status.TotalCommits); err != nil {
			return status, fmt.Errorf("failed to get total commits: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", hs.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves every recorded run, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.ReportRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo_path, tool_version, initial_branch, start_time, end_time,
		run_duration_ms, total_branches, total_commits, total_errors FROM %s ORDER BY start_time, run_id`, hs.table(reportRunsTable))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportRunRecord
	for rows.Next() {
		var record schema.ReportRunRecord
		var start, end timeColumn
		if err := rows.Scan(&record.RunID, &record.RepoPath, &record.ToolVersion, &record.InitialBranch,
			&start, &end, &record.RunDurationMs, &record.TotalBranches, &record.TotalCommits, &record.TotalErrors); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return results, nil
}

// GetAllOwnership retrieves every recorded commit ownership row.
func (hs *HistoryStoreImpl) GetAllOwnership() ([]schema.CommitOwnershipRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, commit_hash, owner_branch, branch_names, commit_time, author_name, author_email, summary
		FROM %s ORDER BY run_id, commit_hash`, hs.table(commitOwnershipTable))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit ownership: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CommitOwnershipRecord
	for rows.Next() {
		var record schema.CommitOwnershipRecord
		var commitTime timeColumn
		if err := rows.Scan(&record.RunID, &record.CommitHash, &record.OwnerBranch, &record.BranchNames,
			&commitTime, &record.AuthorName, &record.AuthorEmail, &record.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan commit ownership: %w", err)
		}
		record.CommitTime = commitTime.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit ownership: %w", err)
	}
	return results, nil
}
