package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/huangsam/gitsummary/internal/contract"
)

// profiler writes <prefix>.cpu.prof while running and <prefix>.mem.prof on stop.
type profiler struct {
	prefix string
	cpu    *os.File
}

// activeProfiler is set by --profile and stopped once from main.
var activeProfiler *profiler

func startProfiler(prefix string) (*profiler, error) {
	cpu, err := os.Create(prefix + ".cpu.prof")
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpu); err != nil {
		_ = cpu.Close()
		return nil, fmt.Errorf("could not start CPU profiling: %w", err)
	}
	contract.LogInfo("Profiling to " + prefix + ".cpu.prof and " + prefix + ".mem.prof")
	return &profiler{prefix: prefix, cpu: cpu}, nil
}

func (p *profiler) stop() error {
	pprof.StopCPUProfile()
	_ = p.cpu.Close()

	mem, err := os.Create(p.prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = mem.Close() }()
	if err := pprof.WriteHeapProfile(mem); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}

// StopProfiling flushes the profiles started by --profile, if any.
func StopProfiling() error {
	if activeProfiler == nil {
		return nil
	}
	p := activeProfiler
	activeProfiler = nil
	return p.stop()
}
