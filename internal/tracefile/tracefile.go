// Package tracefile writes the diagnostic files of a report run to disk.
package tracefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/huangsam/gitsummary/internal/contract"
)

// File names used by a report run.
const (
	RemotesFile    = "Remotes.txt"
	BranchesFile   = "Branches.txt"
	FullLogFile    = "Git Full Log.txt"
	BranchLogsDir  = "Branch Logs"
	CommitsDir     = "Commits"
	PopulateFile   = "Populate.log"
	FullReportFile = "Full Report.json"
)

// Sink writes trace files under <folder>/<repository base name>/.
// A nil or disabled Sink accepts every call and writes nothing.
type Sink struct {
	root    string
	enabled bool
	locks   sync.Map // file path -> *sync.Mutex
}

var _ contract.TraceSink = &Sink{} // Compile-time check

// New returns a sink for the repository at repoPath.
func New(cfg contract.TraceConfig, repoPath string) *Sink {
	if !cfg.Enabled || cfg.Folder == "" {
		return &Sink{}
	}
	base := filepath.Base(filepath.Clean(repoPath))
	return &Sink{root: filepath.Join(cfg.Folder, SafeFileName(base)), enabled: true}
}

// Enabled reports whether the sink writes anything.
func (s *Sink) Enabled() bool {
	return s != nil && s.enabled
}

// Root returns the folder trace files are written to.
func (s *Sink) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Write replaces the file name with payload.
func (s *Sink) Write(name string, payload string) {
	s.store(name, payload, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// Append adds line and a newline to the file name.
func (s *Sink) Append(name string, line string) {
	s.store(name, line+"\n", os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

// WriteJSON writes v as indented JSON.
func (s *Sink) WriteJSON(name string, v any) {
	if !s.Enabled() {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		contract.LogDebug(fmt.Sprintf("trace %s not written: %v", name, err))
		return
	}
	s.Write(name, string(data))
}

// BranchLogName returns the trace file name of one branch log.
func BranchLogName(ref string) string {
	return filepath.Join(BranchLogsDir, SafeFileName(ref)+".txt")
}

// CommitName returns the trace file name of one commit detail.
func CommitName(hash string) string {
	return filepath.Join(CommitsDir, SafeFileName(hash)+".txt")
}

func (s *Sink) store(name, payload string, flags int) {
	if !s.Enabled() {
		return
	}
	path := filepath.Join(s.root, name)

	mu, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	if err := writeFile(path, payload, flags); err != nil {
		contract.LogDebug(fmt.Sprintf("trace %s not written: %v", path, err))
	}
}

func writeFile(path, payload string, flags int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(payload); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SafeFileName maps characters that are not allowed in file names to look-alike
// Unicode characters. Double quotes alternate between opening and closing quotes.
func SafeFileName(name string) string {
	var b strings.Builder
	open := true
	for _, r := range name {
		switch r {
		case '\\':
			b.WriteRune('⧵')
		case '/':
			b.WriteRune('∕')
		case ':':
			b.WriteRune('꞉')
		case '"':
			if open {
				b.WriteRune('“')
			} else {
				b.WriteRune('”')
			}
			open = !open
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
