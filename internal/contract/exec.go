package contract

import (
	"fmt"
	"strings"
	"time"
)

// ExecResult is everything one external process invocation produced.
type ExecResult struct {
	Args     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	TimedOut bool
	Timeout  time.Duration
	Duration time.Duration
	Err      error // start or stream failure
}

// ProcessError describes why an invocation is considered failed.
type ProcessError struct {
	Operation string
	Reasons   []string
	Err       error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, strings.Join(e.Reasons, ". "))
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// DemandSuccess returns a *ProcessError when the invocation timed out, could not be run,
// exited non-zero, or (when failOnStderr is set) wrote anything to stderr.
// Partial output is never salvaged.
func (r *ExecResult) DemandSuccess(operation string, failOnStderr bool) error {
	var reasons []string
	if r.TimedOut {
		reasons = append(reasons, fmt.Sprintf("Operation canceled by timeout (%s)", r.Timeout))
	}
	switch {
	case r.Err != nil:
		reasons = append(reasons, fmt.Sprintf("I/O error: %v", r.Err))
	case r.ExitCode != 0 && !r.TimedOut:
		reasons = append(reasons, fmt.Sprintf("Exit code is %d", r.ExitCode))
	}
	stderr := strings.TrimSpace(string(r.Stderr))
	if stderr != "" && (failOnStderr || len(reasons) > 0) {
		reasons = append(reasons, "Std Error: "+stderr)
	}
	if len(reasons) == 0 {
		return nil
	}
	return &ProcessError{Operation: operation, Reasons: reasons, Err: r.Err}
}
