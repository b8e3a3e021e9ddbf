package core

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
)

// Wave names.
const (
	BranchWave = "branches"
	CommitWave = "commits"
)

// MultiObserver fans wave events out to several observers.
type MultiObserver []contract.WaveObserver

var _ contract.WaveObserver = MultiObserver{} // Compile-time check

// WaveStarted implements contract.WaveObserver.
func (m MultiObserver) WaveStarted(wave string, total int) {
	for _, o := range m {
		if o != nil {
			o.WaveStarted(wave, total)
		}
	}
}

// ItemCompleted implements contract.WaveObserver.
func (m MultiObserver) ItemCompleted(wave, item string, err error) {
	for _, o := range m {
		if o != nil {
			o.ItemCompleted(wave, item, err)
		}
	}
}

// WaveFinished implements contract.WaveObserver.
func (m MultiObserver) WaveFinished(wave string) {
	for _, o := range m {
		if o != nil {
			o.WaveFinished(wave)
		}
	}
}

// ProgressObserver counts completed items and emits one line per completion:
// "elapsed i of N | item".
type ProgressObserver struct {
	start time.Time
	total atomic.Int64
	done  atomic.Int64
	emit  func(line string)
}

var _ contract.WaveObserver = &ProgressObserver{} // Compile-time check

// NewProgressObserver returns an observer that passes progress lines to emit.
func NewProgressObserver(emit func(line string)) *ProgressObserver {
	return &ProgressObserver{start: time.Now(), emit: emit}
}

// WaveStarted implements contract.WaveObserver.
func (p *ProgressObserver) WaveStarted(_ string, total int) {
	p.total.Store(int64(total))
	p.done.Store(0)
}

// ItemCompleted implements contract.WaveObserver.
func (p *ProgressObserver) ItemCompleted(_ string, item string, err error) {
	i := p.done.Add(1)
	line := fmt.Sprintf("%s %d of %d | %s", time.Since(p.start).Round(time.Millisecond), i, p.total.Load(), item)
	if err != nil {
		line += " (failed)"
	}
	p.emit(line)
}

// WaveFinished implements contract.WaveObserver.
func (p *ProgressObserver) WaveFinished(string) {}

// Done returns the number of items completed in the current wave.
func (p *ProgressObserver) Done() int64 {
	return p.done.Load()
}
