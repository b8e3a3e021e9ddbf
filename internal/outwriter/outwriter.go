// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints a commit report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	return WriteReport(report, cfg, duration)
}

// WriteBranches prints the structured remote branches using the configured output format.
func (ow *OutWriter) WriteBranches(branches []schema.RemoteBranch, cfg *contract.Config) error {
	return WriteBranches(branches, cfg)
}

// WriteLog prints the history of HEAD using the configured output format.
func (ow *OutWriter) WriteLog(commits []schema.CommitRecord, cfg *contract.Config) error {
	return WriteLog(commits, cfg)
}
