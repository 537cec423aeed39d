package application

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/bnema/haptic-handshake/internal/ports"
	"github.com/google/uuid"
)

type ArbitratorConfig struct {
	Duration           time.Duration
	Cooldown           time.Duration
	WatchdogSlack      time.Duration
	Settle             time.Duration
	PendingTimeout     time.Duration
	RequireCalibration bool
	Scale              domain.MotionScale
	Profiles           map[domain.IntensityProfile]domain.ProfileParams
}

func DefaultArbitratorConfig() ArbitratorConfig {
	return ArbitratorConfig{
		Duration:       4 * time.Second,
		Cooldown:       1500 * time.Millisecond,
		WatchdogSlack:  250 * time.Millisecond,
		Settle:         120 * time.Millisecond,
		PendingTimeout: 2 * time.Second,
		Scale:          domain.DefaultMotionScale(),
		Profiles:       domain.DefaultProfiles(),
	}
}

// Status is a point-in-time view of the device and its session.
type Status struct {
	State             domain.SessionState
	SessionID         string
	Owner             domain.AgentID
	Profile           domain.IntensityProfile
	Elapsed           time.Duration
	Duration          time.Duration
	SynthesizerActive bool
	Held              bool
	CooldownRemaining time.Duration
	WatchdogRemaining time.Duration
	LastRelease       domain.ReleaseReason
	Sessions          uint64
	Calibration       domain.CalibrationBaseline
	Telemetry         domain.TelemetrySample
	HasTelemetry      bool
	Connected         bool
}

// Arbitrator grants exclusive ownership of the device to one agent at a time.
// Every entry point serializes on mu, including Tick.
type Arbitrator struct {
	cfg         ArbitratorConfig
	transport   ports.Transport
	calibration *CalibrationStore
	presence    ports.AgentPresence
	clock       ports.Clock
	logger      *slog.Logger
	newID       func() string

	mu              sync.Mutex
	session         domain.Session
	synth           *Synthesizer
	watchdogAt      time.Time
	pendingDeadline time.Time
	cooldownUntil   time.Time
	held            bool
	lastRelease     domain.ReleaseReason
	sessions        uint64
}

func NewArbitrator(cfg ArbitratorConfig, transport ports.Transport, calibration *CalibrationStore, presence ports.AgentPresence, clock ports.Clock, logger *slog.Logger) *Arbitrator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cfg.Profiles == nil {
		cfg.Profiles = domain.DefaultProfiles()
	}

	return &Arbitrator{
		cfg:         cfg,
		transport:   transport,
		calibration: calibration,
		presence:    presence,
		clock:       clock,
		logger:      logging.Component(logger, "arbitrator"),
		newID:       func() string { return uuid.NewString() },
		session:     domain.Session{State: domain.SessionIdle},
	}
}

// SetPresence binds the source polled by running sessions. Used when the
// adapter is built after the arbitrator.
func (a *Arbitrator) SetPresence(presence ports.AgentPresence) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.presence = presence
}

// TryBegin is Begin for callers that only care about the decision.
func (a *Arbitrator) TryBegin(agent domain.AgentID, profile domain.IntensityProfile) bool {
	return a.Begin(agent, profile) == nil
}

// Begin claims the device for agent. Claims are never preempted: the first
// agent wins until its session is released and the cooldown has passed.
func (a *Arbitrator) Begin(agent domain.AgentID, profile domain.IntensityProfile) error {
	if agent == "" {
		return fmt.Errorf("%w: agent id is required", domain.ErrSessionDenied)
	}
	if _, ok := a.cfg.Profiles[profile]; !ok {
		return fmt.Errorf("begin session: %w: %q", domain.ErrUnknownProfile, profile)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	if a.session.Owner != "" || a.synth != nil {
		a.logger.Debug("session denied", "agent", agent, "owner", a.session.Owner, "reason", "busy")
		return fmt.Errorf("%w: %w", domain.ErrSessionDenied, domain.ErrDeviceBusy)
	}
	if now.Before(a.cooldownUntil) {
		remaining := a.cooldownUntil.Sub(now)
		a.logger.Debug("session denied", "agent", agent, "reason", "cooldown", "remaining", remaining)
		return fmt.Errorf("%w: %w (%s remaining)", domain.ErrSessionDenied, domain.ErrCooldownActive, remaining.Round(time.Millisecond))
	}
	if a.cfg.RequireCalibration && !a.calibration.IsSet() {
		a.logger.Warn("session refused until the device is calibrated", "agent", agent)
		return domain.ErrCalibrationRequired
	}

	a.session = domain.Session{
		ID:        a.newID(),
		Owner:     agent,
		Profile:   profile,
		StartedAt: now,
		State:     domain.SessionPending,
	}
	if a.cfg.PendingTimeout > 0 {
		a.pendingDeadline = now.Add(a.cfg.PendingTimeout)
	}

	a.logger.Info("session granted", "session", a.session.ID, "agent", agent, "profile", profile)
	return nil
}

// NotifyStarted confirms that the owner's animation began and starts motion.
func (a *Arbitrator) NotifyStarted(agent domain.AgentID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOwnerLocked(agent); err != nil {
		return err
	}
	if a.session.State != domain.SessionPending {
		a.logger.Debug("start ignored", "agent", agent, "state", a.session.State)
		return nil
	}

	now := a.clock.Now()
	params := a.cfg.Profiles[a.session.Profile].Scaled(a.cfg.Duration)

	a.synth = newSynthesizer(synthesizerOptions{
		owner:       agent,
		profile:     a.session.Profile,
		params:      params,
		scale:       a.cfg.Scale,
		settle:      a.cfg.Settle,
		transport:   a.transport,
		calibration: a.calibration,
		presence:    a.presence,
		logger:      logging.Component(a.logger, "synthesizer"),
	})
	a.synth.SetHold(a.held)

	a.session.State = domain.SessionRunning
	a.session.StartedAt = now
	a.pendingDeadline = time.Time{}
	a.armWatchdogLocked(now.Add(params.Duration() + a.cfg.WatchdogSlack))

	a.logger.Info("session running", "session", a.session.ID, "agent", agent, "profile", a.session.Profile, "duration", params.Duration())
	return nil
}

// HandleEnd records the owner's end signal. Ownership is cleared only after
// the synthesizer has returned to its origin and stopped.
func (a *Arbitrator) HandleEnd(agent domain.AgentID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkOwnerLocked(agent); err != nil {
		return err
	}

	switch a.session.State {
	case domain.SessionPending:
		a.releaseLocked(a.clock.Now(), domain.ReleaseCompleted)
	case domain.SessionRunning:
		a.session.State = domain.SessionDraining
		if a.synth != nil {
			a.synth.End()
		}
		a.logger.Info("session draining", "session", a.session.ID, "agent", agent)
	}

	return nil
}

// ForceRelease aborts whatever is running and clears ownership immediately.
// An aborted synthesizer still returns to its origin on the following ticks.
func (a *Arbitrator) ForceRelease(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.synth != nil {
		a.synth.Abort()
	} else {
		a.transport.WriteStop()
	}

	if a.session.Owner == "" {
		a.logger.Info("force release with no owner", "reason", reason)
		return
	}

	a.logger.Warn("session force released", "session", a.session.ID, "agent", a.session.Owner, "reason", reason)
	a.releaseLocked(a.clock.Now(), domain.ReleaseForced)
}

// SetHold freezes the actuator. While held every tick emits stop; session
// time keeps running.
func (a *Arbitrator) SetHold(held bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.held = held
	if a.synth != nil {
		a.synth.SetHold(held)
	}
	a.logger.Info("operator hold", "held", held)
}

// Tick runs one step of the synthesizer plus watchdog, pending and cooldown
// bookkeeping. The host loop calls it once per frame.
func (a *Arbitrator) Tick(dt time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	if a.session.State == domain.SessionPending && !a.pendingDeadline.IsZero() && !now.Before(a.pendingDeadline) {
		a.logger.Warn("session never confirmed, releasing", "session", a.session.ID, "agent", a.session.Owner, "timeout", a.cfg.PendingTimeout)
		a.releaseLocked(now, domain.ReleasePendingTimeout)
	}

	if !a.watchdogAt.IsZero() && !now.Before(a.watchdogAt) {
		a.logger.Warn("watchdog fired, forcing session release",
			"session", a.session.ID,
			"agent", a.session.Owner,
			"error", domain.ErrWatchdogTimeout,
		)
		if a.synth != nil {
			a.synth.Abort()
		}
		a.releaseLocked(now, domain.ReleaseWatchdog)
	}

	if a.synth == nil {
		if a.held {
			a.transport.WriteStop()
		}
		return
	}

	if !a.synth.Step(dt) {
		return
	}

	interrupted := a.synth.Interrupted()
	a.synth = nil
	if a.session.Owner != "" {
		a.logger.Info("session completed", "session", a.session.ID, "agent", a.session.Owner, "interrupted", interrupted)
		a.releaseLocked(now, domain.ReleaseCompleted)
	}
}

func (a *Arbitrator) IsSessionActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.session.Owner != "" || a.synth != nil
}

// IsOwner reports whether agent holds the device right now.
func (a *Arbitrator) IsOwner(agent domain.AgentID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return agent != "" && a.session.Owner == agent
}

func (a *Arbitrator) CooldownUntil() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.cooldownUntil
}

func (a *Arbitrator) Snapshot() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	status := Status{
		State:       a.session.State,
		SessionID:   a.session.ID,
		Owner:       a.session.Owner,
		Profile:     a.session.Profile,
		Held:        a.held,
		LastRelease: a.lastRelease,
		Sessions:    a.sessions,
		Connected:   a.transport.Connected(),
		Calibration: a.calibration.Baseline(),
	}
	status.Telemetry, status.HasTelemetry = a.transport.Latest()

	if a.synth != nil {
		status.SynthesizerActive = true
		status.Elapsed = a.synth.Elapsed()
		status.Duration = a.synth.Duration()
		if a.session.Owner == "" {
			status.State = domain.SessionDraining
		}
	}
	if now.Before(a.cooldownUntil) {
		status.CooldownRemaining = a.cooldownUntil.Sub(now)
	}
	if !a.watchdogAt.IsZero() && now.Before(a.watchdogAt) {
		status.WatchdogRemaining = a.watchdogAt.Sub(now)
	}

	return status
}

func (a *Arbitrator) checkOwnerLocked(agent domain.AgentID) error {
	if a.session.Owner == "" || a.session.Owner != agent {
		return fmt.Errorf("%w: %q", domain.ErrNotOwner, agent)
	}
	return nil
}

// armWatchdogLocked replaces any pending deadline; only one watchdog exists.
func (a *Arbitrator) armWatchdogLocked(deadline time.Time) {
	a.watchdogAt = deadline
}

func (a *Arbitrator) releaseLocked(now time.Time, reason domain.ReleaseReason) {
	a.logger.Info("session released",
		"session", a.session.ID,
		"agent", a.session.Owner,
		"reason", reason,
		"held_for", now.Sub(a.session.StartedAt).Round(time.Millisecond),
	)

	a.session = domain.Session{State: domain.SessionIdle}
	a.watchdogAt = time.Time{}
	a.pendingDeadline = time.Time{}
	a.cooldownUntil = now.Add(a.cfg.Cooldown)
	a.lastRelease = reason
	a.sessions++
}
