package profiler

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAggregates(t *testing.T) {
	p := NewStepProfiler()
	p.Track("forward", 10*time.Millisecond)
	p.Track("forward", 30*time.Millisecond)
	p.Track("backward", 5*time.Millisecond)

	stats := p.Stats()
	require.Len(t, stats, 2)

	// Sorted by name.
	assert.Equal(t, "backward", stats[0].Name)
	assert.Equal(t, "forward", stats[1].Name)

	fwd := stats[1]
	assert.Equal(t, int64(2), fwd.Count)
	assert.Equal(t, 40*time.Millisecond, fwd.Total)
	assert.Equal(t, 10*time.Millisecond, fwd.Min)
	assert.Equal(t, 30*time.Millisecond, fwd.Max)
	assert.Equal(t, 20*time.Millisecond, fwd.Average)
}

func TestTimePropagatesError(t *testing.T) {
	p := NewStepProfiler()
	boom := errors.New("forward failed")

	err := p.Time("forward", func() error { return boom })
	assert.Equal(t, boom, err)

	stats := p.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].Count, "failed operations still count")
}

func TestReportContainsOperations(t *testing.T) {
	p := NewStepProfiler()
	p.Track("step", time.Millisecond)
	assert.Contains(t, p.Report(), "step")
}
