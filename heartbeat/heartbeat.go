package heartbeat

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/probekit/envprobe/metrics"
)

// Beater writes a liveness mark to its writer at a fixed cadence. Each mark is
// a single unbuffered write so an observer tailing the output sees it
// immediately, and an interrupt never leaves a partial mark behind.
type Beater struct {
	w        io.Writer
	interval time.Duration
	mark     string
	count    atomic.Uint64
}

// New creates a Beater writing mark to w every interval.
func New(w io.Writer, interval time.Duration, mark string) *Beater {
	return &Beater{
		w:        w,
		interval: interval,
		mark:     mark,
	}
}

// Run emits marks until ctx is cancelled. It has no termination condition of
// its own; cancellation returns nil, a write failure returns the error.
func (b *Beater) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.WriteString(b.w, b.mark); err != nil {
				return fmt.Errorf("failed to write heartbeat: %w", err)
			}
			b.count.Add(1)
			metrics.IncHeartbeat()
		}
	}
}

// Count returns the number of marks emitted so far.
func (b *Beater) Count() uint64 {
	return b.count.Load()
}
