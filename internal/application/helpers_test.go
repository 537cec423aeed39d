package application

import (
	"sync"
	"testing"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *manualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}

type command struct {
	stop   bool
	target domain.EncoderPair
}

// recordingTransport keeps every command written in order.
type recordingTransport struct {
	mu        sync.Mutex
	commands  []command
	sample    domain.TelemetrySample
	hasSample bool
}

func (r *recordingTransport) Latest() (domain.TelemetrySample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sample, r.hasSample
}

func (r *recordingTransport) SetSample(sample domain.TelemetrySample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sample = sample
	r.hasSample = true
}

func (r *recordingTransport) WriteTarget(target domain.EncoderPair) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, command{target: target})
}

func (r *recordingTransport) WriteStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, command{stop: true})
}

func (r *recordingTransport) Connected() bool {
	return true
}

func (r *recordingTransport) Commands() []command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]command(nil), r.commands...)
}

func (r *recordingTransport) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = nil
}

type arbitratorFixture struct {
	clock       *manualClock
	transport   *recordingTransport
	calibration *CalibrationStore
	arbitrator  *Arbitrator
	cfg         ArbitratorConfig
}

func newArbitratorFixture(t *testing.T, mutate ...func(*ArbitratorConfig)) *arbitratorFixture {
	t.Helper()

	cfg := DefaultArbitratorConfig()
	for _, fn := range mutate {
		fn(&cfg)
	}

	clock := newManualClock()
	transport := &recordingTransport{}
	calibration := NewCalibrationStore(transport, nil, clock, logging.Discard())
	calibration.Capture(domain.TelemetrySample{Left: 1000, Right: 2000})

	arbitrator := NewArbitrator(cfg, transport, calibration, nil, clock, logging.Discard())
	require.NotNil(t, arbitrator)

	return &arbitratorFixture{
		clock:       clock,
		transport:   transport,
		calibration: calibration,
		arbitrator:  arbitrator,
		cfg:         cfg,
	}
}

// step advances the clock by one frame and ticks the arbitrator.
func (f *arbitratorFixture) step() time.Time {
	now := f.clock.Advance(frame)
	f.arbitrator.Tick(frame)
	return now
}

// runUntilIdle steps frames until no session or synthesizer remains and
// returns the time of the last tick.
func (f *arbitratorFixture) runUntilIdle(t *testing.T, limit time.Duration) time.Time {
	t.Helper()

	var last time.Time
	for elapsed := time.Duration(0); elapsed < limit; elapsed += frame {
		last = f.step()
		if !f.arbitrator.IsSessionActive() {
			return last
		}
	}

	require.FailNow(t, "session still active", "after %s", limit)
	return last
}
