package core

import (
	"context"
	"time"
)

// Pacer spaces out generations for human-watchable output.
type Pacer struct {
	interval time.Duration
}

// NewPacer returns a Pacer waiting interval between generations. A
// non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval < 0 {
		interval = 0
	}
	return &Pacer{interval: interval}
}

// Interval reports the configured delay.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Wait blocks for the interval or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.interval == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
