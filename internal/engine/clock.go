package engine

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultFPS is the frame rate of a TickerClock created with fps <= 0.
const DefaultFPS = 60

// Clock schedules the next frame. Wait blocks until the frame is due or ctx
// is done.
type Clock interface {
	Wait(ctx context.Context) error
}

// TickerClock paces frames from a time.Ticker.
type TickerClock struct {
	ticker *time.Ticker
}

// NewTickerClock creates a clock ticking fps times per second.
func NewTickerClock(fps int) *TickerClock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &TickerClock{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

// Wait blocks until the next tick.
func (c *TickerClock) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ticker.C:
		return nil
	}
}

// Stop releases the underlying ticker.
func (c *TickerClock) Stop() {
	c.ticker.Stop()
}

// ManualClock never blocks; it only counts frames. Used by tests and
// headless runs.
type ManualClock struct {
	frames atomic.Int64
}

// Wait counts a frame and returns immediately unless ctx is done.
func (c *ManualClock) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.frames.Add(1)
	return nil
}

// Frames returns the number of frames waited for.
func (c *ManualClock) Frames() int64 {
	return c.frames.Load()
}
