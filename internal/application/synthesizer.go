package application

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/ports"
)

type synthPhase int

const (
	phasePlaying synthPhase = iota
	phaseSettling
	phaseDone
)

// Synthesizer plays one intensity profile on the device. It is stepped by the
// tick loop and never sleeps; abort, end and hold are polled once per tick.
type Synthesizer struct {
	owner       domain.AgentID
	profile     domain.IntensityProfile
	params      domain.ProfileParams
	scale       domain.MotionScale
	settle      time.Duration
	transport   ports.Transport
	calibration *CalibrationStore
	presence    ports.AgentPresence
	logger      *slog.Logger

	origin  domain.EncoderPair
	elapsed time.Duration
	settled time.Duration
	phase   synthPhase
	early   bool

	aborted atomic.Bool
	ended   atomic.Bool
	held    atomic.Bool
}

type synthesizerOptions struct {
	owner       domain.AgentID
	profile     domain.IntensityProfile
	params      domain.ProfileParams
	scale       domain.MotionScale
	settle      time.Duration
	transport   ports.Transport
	calibration *CalibrationStore
	presence    ports.AgentPresence
	logger      *slog.Logger
}

// newSynthesizer snapshots the return origin, so a session always settles
// back where it started even when uncalibrated.
func newSynthesizer(opts synthesizerOptions) *Synthesizer {
	return &Synthesizer{
		owner:       opts.owner,
		profile:     opts.profile,
		params:      opts.params,
		scale:       opts.scale,
		settle:      opts.settle,
		transport:   opts.transport,
		calibration: opts.calibration,
		presence:    opts.presence,
		logger:      opts.logger,
		origin:      opts.calibration.Origin(),
	}
}

func (s *Synthesizer) Abort() {
	s.aborted.Store(true)
}

// End asks the synthesizer to leave the motion loop at its next tick.
func (s *Synthesizer) End() {
	s.ended.Store(true)
}

func (s *Synthesizer) SetHold(held bool) {
	s.held.Store(held)
}

func (s *Synthesizer) Elapsed() time.Duration {
	return s.elapsed
}

func (s *Synthesizer) Duration() time.Duration {
	return s.params.Duration()
}

func (s *Synthesizer) Done() bool {
	return s.phase == phaseDone
}

// Interrupted reports whether the motion loop was left before the full duration.
func (s *Synthesizer) Interrupted() bool {
	return s.early
}

// Step advances the synthesizer by dt and reports whether it has finished,
// including the return to the origin and the final stop.
func (s *Synthesizer) Step(dt time.Duration) bool {
	if dt < 0 {
		dt = 0
	}

	switch s.phase {
	case phasePlaying:
		if s.elapsed >= s.params.Duration() {
			return s.beginReturn()
		}
		if s.shouldExit() {
			s.early = true
			return s.beginReturn()
		}

		if s.held.Load() {
			s.transport.WriteStop()
		} else {
			s.transport.WriteTarget(s.target(s.scale.Target(s.params, s.elapsed)))
		}
		s.elapsed += dt
		return false

	case phaseSettling:
		s.settled += dt
		if s.settled < s.settle {
			return false
		}
		s.transport.WriteStop()
		s.phase = phaseDone
		s.logger.Debug("synthesizer stopped", "profile", s.profile, "elapsed", s.elapsed, "interrupted", s.early)
		return true

	default:
		return true
	}
}

// target anchors rel to the baseline, or to the session origin when the
// device is uncalibrated. It never reads live telemetry.
func (s *Synthesizer) target(rel domain.EncoderPair) domain.EncoderPair {
	if s.calibration.IsSet() {
		return s.calibration.ToAbsolute(rel)
	}
	return s.origin.Add(rel)
}

func (s *Synthesizer) shouldExit() bool {
	if s.aborted.Load() || s.ended.Load() {
		return true
	}
	if s.presence != nil && !s.presence.HandshakeActive(s.owner) {
		return true
	}
	return false
}

func (s *Synthesizer) beginReturn() bool {
	s.transport.WriteTarget(s.origin)
	s.phase = phaseSettling
	s.logger.Debug("returning to origin", "left", s.origin.Left, "right", s.origin.Right, "elapsed", s.elapsed)

	if s.settle > 0 {
		return false
	}
	s.transport.WriteStop()
	s.phase = phaseDone
	return true
}
