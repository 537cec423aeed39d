package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/bnema/haptic-handshake/internal/ports"
)

// maxTickGap caps dt after a stall so a paused process does not skip most of
// a session in a single step.
const maxTickGap = 250 * time.Millisecond

type Ticker interface {
	Tick(dt time.Duration)
}

// Host is the frame loop that drives the arbitrator at a fixed rate with the
// measured time between frames.
type Host struct {
	target   Ticker
	interval time.Duration
	clock    ports.Clock
	logger   *slog.Logger
}

func NewHost(target Ticker, interval time.Duration, clock ports.Clock, logger *slog.Logger) *Host {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if interval <= 0 {
		interval = time.Second / 60
	}

	return &Host{
		target:   target,
		interval: interval,
		clock:    clock,
		logger:   logging.Component(logger, "host"),
	}
}

// Run ticks until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Debug("host loop started", "interval", h.interval)
	last := h.clock.Now()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("host loop stopped")
			return ctx.Err()
		case <-ticker.C:
			now := h.clock.Now()
			dt := now.Sub(last)
			last = now
			if dt > maxTickGap {
				h.logger.Debug("tick gap clamped", "gap", dt)
				dt = maxTickGap
			}
			h.target.Tick(dt)
		}
	}
}
