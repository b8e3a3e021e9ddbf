package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GitExecutableEnv names the environment variable that overrides the git binary.
const GitExecutableEnv = "GIT_EXECUTABLE"

// ResolveGitExecutable picks the git binary: the configured value, then
// $GIT_EXECUTABLE, then the platform default.
func ResolveGitExecutable(configured string) string {
	if v := strings.TrimSpace(configured); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(GitExecutableEnv)); v != "" {
		return v
	}
	if runtime.GOOS == "windows" {
		return "git.exe"
	}
	return "git"
}

// SplitLines splits command output on CR and LF, trimming rows and dropping empty ones.
func SplitLines(out []byte) []string {
	fields := strings.FieldsFunc(string(out), func(r rune) bool {
		return r == '\n' || r == '\r'
	})
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateText shortens text to maxWidth runes, marking the cut with "...".
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if maxWidth <= 3 || len(runes) <= maxWidth {
		return text
	}
	return string(runes[:maxWidth-3]) + "..."
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the detail cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitsummary_cache.db"
	}
	return filepath.Join(homeDir, ".gitsummary_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for report history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitsummary_history.db"
	}
	return filepath.Join(homeDir, ".gitsummary_history.db")
}

// ParseBoolString parses yes/no style flag values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
