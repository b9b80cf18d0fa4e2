package service

import (
	"context"
	"log/slog"
	"time"
)

// Ticker is anything that advances by one logical second per call.
type Ticker interface {
	Tick() bool
}

// Clock drives a Ticker at a fixed interval. Each call is one logical second
// regardless of how much wall-clock time actually elapsed.
type Clock struct {
	target   Ticker
	interval time.Duration
	logger   *slog.Logger
}

func NewClock(target Ticker, interval time.Duration, logger *slog.Logger) *Clock {
	return &Clock{target: target, interval: interval, logger: logger}
}

// Run ticks until ctx is cancelled. A non-positive interval disables ticking
// and Run just waits for cancellation.
func (c *Clock) Run(ctx context.Context) {
	if c.interval <= 0 {
		c.logger.Info("timer clock disabled")
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.logger.Info("timer clock started", "interval", c.interval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("timer clock stopped")
			return
		case <-ticker.C:
			c.target.Tick()
		}
	}
}
