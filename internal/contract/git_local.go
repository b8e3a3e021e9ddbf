package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/huangsam/gitsummary/schema"
)

// logFormat renders one commit per row: hash, commit date, RFC 2822 author date,
// ISO author date, author name, author email.
var logFormat = strings.Join([]string{"%H", "%cd", "%aD", "%aI", "%an", "%ae"}, " "+schema.FieldDelimiter+" ")

// branchListArgs lists branches by short name without decoration.
var branchListArgs = []string{"branch", "--no-color", "--no-column", "--format", "%(refname:lstrip=2)"}

// LocalGitClient implements the GitClient interface by executing the
// local git binary installed on the machine.
type LocalGitClient struct {
	Executable string        // resolved git binary
	Timeout    time.Duration // per-invocation limit, 0 for none
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
// An empty executable is resolved through ResolveGitExecutable.
func NewLocalGitClient(executable string, timeout time.Duration) *LocalGitClient {
	return &LocalGitClient{
		Executable: ResolveGitExecutable(executable),
		Timeout:    timeout,
	}
}

// Exec implements the GitClient interface.
func (c *LocalGitClient) Exec(ctx context.Context, repoPath string, args ...string) *ExecResult {
	res := &ExecResult{Args: args, Timeout: c.Timeout, ExitCode: -1}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Executable, args...)
	if repoPath != "" {
		cmd.Dir = repoPath
	}
	cmd.Env = append(os.Environ(), "LANG=C", "LC_ALL=C")
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	res.TimedOut = c.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case !res.TimedOut:
		res.Err = err
	}
	return res
}

// Run implements the GitClient interface.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	res := c.Exec(ctx, repoPath, args...)
	if err := runFailure(res, repoPath); err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

func runFailure(res *ExecResult, repoPath string) error {
	err := res.DemandSuccess("git "+strings.Join(res.Args, " "), false)
	if err == nil {
		return nil
	}
	if res.Err != nil && errors.Is(res.Err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrGitNotFound, err)
	}
	return fmt.Errorf("git command failed in %q: %w", repoPath, err)
}

// GetVersion implements the GitClient interface.
func (c *LocalGitClient) GetVersion(ctx context.Context) (string, error) {
	res := c.Exec(ctx, "", "--version")
	if err := res.DemandSuccess("git --version", true); err != nil {
		if res.Err != nil && errors.Is(res.Err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %w", ErrGitNotFound, err)
		}
		return "", err
	}
	lines := SplitLines(res.Stdout)
	if len(lines) == 0 {
		return "", errors.New("git --version printed nothing")
	}
	return lines[0], nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotGitRepo, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCurrentBranch implements the GitClient interface.
// An unborn branch still reports its name. A detached HEAD reports the short commit hash.
func (c *LocalGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	res := c.Exec(ctx, repoPath, "symbolic-ref", "--short", "-q", "HEAD")
	// -q exits 1 silently when HEAD is not a symbolic ref
	detached := res.Err == nil && !res.TimedOut && res.ExitCode == 1 && len(bytes.TrimSpace(res.Stderr)) == 0
	if !detached {
		if err := runFailure(res, repoPath); err != nil {
			return "", err
		}
		return strings.TrimSpace(string(res.Stdout)), nil
	}
	out, err := c.Run(ctx, repoPath, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListRemotes implements the GitClient interface.
func (c *LocalGitClient) ListRemotes(ctx context.Context, repoPath string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "remote")
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// ListRemoteBranchRefs implements the GitClient interface.
func (c *LocalGitClient) ListRemoteBranchRefs(ctx context.Context, repoPath string) ([]string, error) {
	args := append(append([]string{}, branchListArgs...), "-r")
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// ListContainingBranchRefs implements the GitClient interface.
func (c *LocalGitClient) ListContainingBranchRefs(ctx context.Context, repoPath string, hash string) ([]string, error) {
	args := append(append([]string{}, branchListArgs...), "-r", "--contains", hash)
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// GetBranchLog implements the GitClient interface.
func (c *LocalGitClient) GetBranchLog(ctx context.Context, repoPath string, ref string) ([]byte, error) {
	args := []string{
		"log",
		"--date=format:%a %Y-%m-%d %H:%M:%S %z",
		"--pretty=format:" + logFormat,
	}
	if ref != "" {
		args = append(args, ref)
	}
	return c.Run(ctx, repoPath, args...)
}

// GetParentGraph implements the GitClient interface.
func (c *LocalGitClient) GetParentGraph(ctx context.Context, repoPath string, ref string) ([]byte, error) {
	return c.Run(ctx, repoPath, "log", "--pretty=format:%H %P", ref)
}

// GetCommitDetail implements the GitClient interface.
func (c *LocalGitClient) GetCommitDetail(ctx context.Context, repoPath string, hash string) ([]byte, error) {
	return c.Run(ctx, repoPath, "show", "--no-color", "--stat=99999,99999,99999", hash)
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, repoPath string, branch string) error {
	_, err := c.Run(ctx, repoPath, "checkout", branch)
	return err
}

// Fetch implements the GitClient interface.
func (c *LocalGitClient) Fetch(ctx context.Context, repoPath string, all bool) error {
	args := []string{"fetch"}
	if all {
		args = append(args, "--all")
	}
	_, err := c.Run(ctx, repoPath, args...)
	return err
}

// Pull implements the GitClient interface.
func (c *LocalGitClient) Pull(ctx context.Context, repoPath string, all bool) error {
	args := []string{"pull"}
	if all {
		args = append(args, "--all")
	}
	_, err := c.Run(ctx, repoPath, args...)
	return err
}
