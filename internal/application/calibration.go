package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/bnema/haptic-handshake/internal/ports"
)

// CalibrationStore holds the zero reference used to turn relative motion
// targets into absolute encoder positions.
type CalibrationStore struct {
	transport ports.Transport
	repo      ports.CalibrationRepository
	clock     ports.Clock
	logger    *slog.Logger

	mu       sync.RWMutex
	baseline domain.CalibrationBaseline

	warnedUncalibrated atomic.Bool
}

// NewCalibrationStore returns an uncalibrated store. repo may be nil, in which
// case baselines live only in memory.
func NewCalibrationStore(transport ports.Transport, repo ports.CalibrationRepository, clock ports.Clock, logger *slog.Logger) *CalibrationStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &CalibrationStore{
		transport: transport,
		repo:      repo,
		clock:     clock,
		logger:    logging.Component(logger, "calibration"),
	}
}

// Capture overwrites the baseline with sample.
func (c *CalibrationStore) Capture(sample domain.TelemetrySample) domain.CalibrationBaseline {
	baseline := domain.CalibrationBaseline{
		Base:       sample.Pair(),
		IsSet:      true,
		CapturedAt: c.clock.Now(),
	}

	c.mu.Lock()
	c.baseline = baseline
	c.mu.Unlock()

	c.logger.Info("baseline captured", "left", baseline.Base.Left, "right", baseline.Base.Right)
	return baseline
}

// CalibrateNow captures the latest telemetry sample and persists it.
// The in-memory baseline is kept even when persisting fails.
func (c *CalibrationStore) CalibrateNow(ctx context.Context) (domain.CalibrationBaseline, error) {
	sample, ok := c.transport.Latest()
	if !ok {
		return domain.CalibrationBaseline{}, domain.ErrNoTelemetry
	}

	baseline := c.Capture(sample)
	if c.repo == nil {
		return baseline, nil
	}

	if err := c.repo.Save(ctx, baseline); err != nil {
		return baseline, fmt.Errorf("persist baseline: %w", err)
	}

	return baseline, nil
}

// Restore loads a previously persisted baseline. A missing file is not an error.
func (c *CalibrationStore) Restore(ctx context.Context) (bool, error) {
	if c.repo == nil {
		return false, nil
	}

	baseline, err := c.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCalibrationNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load baseline: %w", err)
	}

	c.mu.Lock()
	c.baseline = baseline
	c.mu.Unlock()

	c.logger.Info("baseline restored",
		"left", baseline.Base.Left,
		"right", baseline.Base.Right,
		"captured_at", baseline.CapturedAt,
	)
	return true, nil
}

func (c *CalibrationStore) Baseline() domain.CalibrationBaseline {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.baseline
}

func (c *CalibrationStore) IsSet() bool {
	return c.Baseline().IsSet
}

// ToAbsolute adds the baseline to rel. Before calibration the current
// telemetry sample stands in for the baseline.
func (c *CalibrationStore) ToAbsolute(rel domain.EncoderPair) domain.EncoderPair {
	return rel.Add(c.reference())
}

func (c *CalibrationStore) ToRelative(abs domain.EncoderPair) domain.EncoderPair {
	return abs.Sub(c.reference())
}

// Origin is the absolute position a session returns to when it finishes.
func (c *CalibrationStore) Origin() domain.EncoderPair {
	return c.reference()
}

func (c *CalibrationStore) reference() domain.EncoderPair {
	baseline := c.Baseline()
	if baseline.IsSet {
		return baseline.Base
	}

	if c.warnedUncalibrated.CompareAndSwap(false, true) {
		c.logger.Warn("device is not calibrated; motion targets are relative to the current position. Run `hs calibrate` to set a baseline")
	}

	sample, ok := c.transport.Latest()
	if !ok {
		return domain.EncoderPair{}
	}
	return sample.Pair()
}
