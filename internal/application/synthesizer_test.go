package application

import (
	"math"
	"testing"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/bnema/haptic-handshake/internal/ports"
	"github.com/bnema/haptic-handshake/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(t *testing.T, profile domain.IntensityProfile, transport *recordingTransport, presence ports.AgentPresence) *Synthesizer {
	t.Helper()

	calibration := NewCalibrationStore(transport, nil, newManualClock(), logging.Discard())
	calibration.Capture(domain.TelemetrySample{Left: 1000, Right: 2000})

	return newSynthesizer(synthesizerOptions{
		owner:       "agent-a",
		profile:     profile,
		params:      domain.DefaultProfiles()[profile],
		scale:       domain.DefaultMotionScale(),
		settle:      120 * time.Millisecond,
		transport:   transport,
		calibration: calibration,
		presence:    presence,
		logger:      logging.Discard(),
	})
}

// runSynthesizer steps until done and returns the number of steps taken.
func runSynthesizer(t *testing.T, s *Synthesizer, dt time.Duration) int {
	t.Helper()

	for i := 1; i <= 10_000; i++ {
		if s.Step(dt) {
			return i
		}
	}

	require.FailNow(t, "synthesizer never finished")
	return 0
}

func splitCommands(commands []command) (motion []command, tail []command) {
	if len(commands) < 2 {
		return nil, commands
	}
	return commands[:len(commands)-2], commands[len(commands)-2:]
}

func TestSynthesizerCompletesEachProfileWithinOneTick(t *testing.T) {
	for _, profile := range domain.AllProfiles() {
		t.Run(string(profile), func(t *testing.T) {
			transport := &recordingTransport{}
			s := newTestSynthesizer(t, profile, transport, nil)

			runSynthesizer(t, s, frame)

			assert.InDelta(t, float64(4*time.Second), float64(s.Elapsed()), float64(frame))
			assert.False(t, s.Interrupted())
			assert.True(t, s.Done())

			motion, tail := splitCommands(transport.Commands())
			assert.InDelta(t, 240, len(motion), 1)
			for _, cmd := range motion {
				assert.False(t, cmd.stop)
			}
			require.Len(t, tail, 2)
			assert.Equal(t, command{target: domain.EncoderPair{Left: 1000, Right: 2000}}, tail[0])
			assert.Equal(t, command{stop: true}, tail[1])
		})
	}
}

func TestSynthesizerEmitsAbsoluteTargets(t *testing.T) {
	transport := &recordingTransport{}
	s := newTestSynthesizer(t, domain.ProfileWeak, transport, nil)

	dt := 100 * time.Millisecond
	for i := 0; i < 21; i++ {
		s.Step(dt)
	}

	commands := transport.Commands()
	require.Len(t, commands, 21)
	assert.Equal(t, domain.EncoderPair{Left: 1000, Right: 2000}, commands[0].target)
	// weak at 2s: full grip, balance 4 splits evenly.
	assert.Equal(t, domain.EncoderPair{Left: 1227, Right: 2227}, commands[20].target)
}

func TestSynthesizerSettlesBeforeStop(t *testing.T) {
	transport := &recordingTransport{}
	s := newTestSynthesizer(t, domain.ProfileStrong, transport, nil)
	s.End()

	require.False(t, s.Step(frame))
	assert.Equal(t, []command{{target: domain.EncoderPair{Left: 1000, Right: 2000}}}, transport.Commands())

	steps := 0
	for !s.Step(frame) {
		steps++
	}
	// 120ms settle at 60Hz needs eight frames; the eighth writes stop.
	assert.Equal(t, 7, steps)
	assert.Equal(t, command{stop: true}, transport.Commands()[1])
	assert.Len(t, transport.Commands(), 2)
}

func TestSynthesizerExitsEarlyWhenAgentStopsReporting(t *testing.T) {
	presence := mocks.NewMockAgentPresence(t)
	polls := 0
	presence.EXPECT().HandshakeActive(domain.AgentID("agent-a")).RunAndReturn(func(domain.AgentID) bool {
		polls++
		return polls <= 30
	})

	transport := &recordingTransport{}
	s := newTestSynthesizer(t, domain.ProfileMiddle, transport, presence)

	runSynthesizer(t, s, frame)

	assert.True(t, s.Interrupted())
	assert.Equal(t, 30*frame, s.Elapsed())

	motion, tail := splitCommands(transport.Commands())
	assert.Len(t, motion, 30)
	assert.Equal(t, command{target: domain.EncoderPair{Left: 1000, Right: 2000}}, tail[0])
	assert.Equal(t, command{stop: true}, tail[1])
}

func TestSynthesizerAbortStillReturnsToOrigin(t *testing.T) {
	transport := &recordingTransport{}
	s := newTestSynthesizer(t, domain.ProfileStrong, transport, nil)

	for i := 0; i < 60; i++ {
		require.False(t, s.Step(frame))
	}
	s.Abort()
	runSynthesizer(t, s, frame)

	assert.True(t, s.Interrupted())
	motion, tail := splitCommands(transport.Commands())
	assert.Len(t, motion, 60)
	assert.Equal(t, command{target: domain.EncoderPair{Left: 1000, Right: 2000}}, tail[0])
	assert.Equal(t, command{stop: true}, tail[1])
}

func TestSynthesizerHoldEmitsStopWhileTimeAdvances(t *testing.T) {
	transport := &recordingTransport{}
	s := newTestSynthesizer(t, domain.ProfileWeak, transport, nil)
	s.SetHold(true)

	for i := 0; i < 10; i++ {
		s.Step(frame)
	}
	for _, cmd := range transport.Commands() {
		assert.True(t, cmd.stop)
	}
	assert.Equal(t, 10*frame, s.Elapsed())

	s.SetHold(false)
	s.Step(frame)
	commands := transport.Commands()
	assert.False(t, commands[len(commands)-1].stop)
}

func TestSynthesizerUncalibratedReturnsToStartingPosition(t *testing.T) {
	transport := &recordingTransport{}
	transport.SetSample(domain.TelemetrySample{Left: 50, Right: 60})
	calibration := NewCalibrationStore(transport, nil, newManualClock(), logging.Discard())

	s := newSynthesizer(synthesizerOptions{
		owner:       "agent-a",
		profile:     domain.ProfileWeak,
		params:      domain.DefaultProfiles()[domain.ProfileWeak],
		scale:       domain.DefaultMotionScale(),
		settle:      0,
		transport:   transport,
		calibration: calibration,
		logger:      logging.Discard(),
	})

	s.Step(frame)
	transport.SetSample(domain.TelemetrySample{Left: 80, Right: 90})
	s.End()

	assert.True(t, s.Step(frame))
	commands := transport.Commands()
	require.Len(t, commands, 3)
	assert.Equal(t, domain.EncoderPair{Left: 50, Right: 60}, commands[0].target)
	assert.Equal(t, domain.EncoderPair{Left: 50, Right: 60}, commands[1].target)
	assert.True(t, commands[2].stop)
}

// followingTransport reports the last written target as the current position,
// like an actuator that tracks its commands.
type followingTransport struct {
	recordingTransport
}

func (f *followingTransport) WriteTarget(target domain.EncoderPair) {
	f.recordingTransport.WriteTarget(target)
	f.SetSample(domain.TelemetrySample{Left: target.Left, Right: target.Right})
}

func TestSynthesizerUncalibratedMotionStaysWithinFullScale(t *testing.T) {
	transport := &followingTransport{}
	transport.SetSample(domain.TelemetrySample{Left: 1000, Right: 2000})
	calibration := NewCalibrationStore(transport, nil, newManualClock(), logging.Discard())
	scale := domain.DefaultMotionScale()

	s := newSynthesizer(synthesizerOptions{
		owner:       "agent-a",
		profile:     domain.ProfileWeak,
		params:      domain.DefaultProfiles()[domain.ProfileWeak],
		scale:       scale,
		settle:      120 * time.Millisecond,
		transport:   transport,
		calibration: calibration,
		logger:      logging.Discard(),
	})
	runSynthesizer(t, s, frame)

	limit := int64(math.Round(scale.FullScaleMM * scale.EncoderPerMM))
	var peak int64
	for _, cmd := range transport.Commands() {
		if cmd.stop {
			continue
		}
		assert.LessOrEqual(t, cmd.target.Left, 1000+limit)
		assert.LessOrEqual(t, cmd.target.Right, 2000+limit)
		assert.GreaterOrEqual(t, cmd.target.Left, int64(1000))
		assert.GreaterOrEqual(t, cmd.target.Right, int64(2000))
		peak = max(peak, cmd.target.Left)
	}
	assert.Greater(t, peak, int64(1300))

	latest, ok := transport.Latest()
	require.True(t, ok)
	assert.Equal(t, domain.EncoderPair{Left: 1000, Right: 2000}, latest.Pair())
}
