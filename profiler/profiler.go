// Package profiler - Timing instrumentation for training steps.
package profiler

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// TimeTracker tracks timing statistics for one named operation.
type TimeTracker struct {
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// Stats is a point-in-time summary of one tracked operation.
type Stats struct {
	Name    string        `json:"name"`
	Count   int64         `json:"count"`
	Total   time.Duration `json:"total"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	Average time.Duration `json:"average"`
}

// StepProfiler collects per-operation durations across training steps.
// It is safe for concurrent use.
type StepProfiler struct {
	mu       sync.Mutex
	trackers map[string]*TimeTracker
}

// NewStepProfiler creates an empty profiler.
func NewStepProfiler() *StepProfiler {
	return &StepProfiler{trackers: make(map[string]*TimeTracker)}
}

// Track records one duration for the named operation.
func (p *StepProfiler) Track(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.trackers[name]
	if !ok {
		t = &TimeTracker{name: name, minTime: d, maxTime: d}
		p.trackers[name] = t
	}
	t.count++
	t.totalTime += d
	if d < t.minTime {
		t.minTime = d
	}
	if d > t.maxTime {
		t.maxTime = d
	}
}

// Time runs fn and records its duration under name.
func (p *StepProfiler) Time(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.Track(name, time.Since(start))
	return err
}

// Stats returns summaries for all tracked operations, sorted by name.
func (p *StepProfiler) Stats() []Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Stats, 0, len(p.trackers))
	for _, t := range p.trackers {
		s := Stats{
			Name:  t.name,
			Count: t.count,
			Total: t.totalTime,
			Min:   t.minTime,
			Max:   t.maxTime,
		}
		if t.count > 0 {
			s.Average = t.totalTime / time.Duration(t.count)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report renders a human-readable summary of all tracked operations.
func (p *StepProfiler) Report() string {
	var b strings.Builder
	for _, s := range p.Stats() {
		fmt.Fprintf(&b, "%-12s count=%d avg=%v min=%v max=%v total=%v\n",
			s.Name, s.Count, s.Average, s.Min, s.Max, s.Total)
	}
	return b.String()
}
