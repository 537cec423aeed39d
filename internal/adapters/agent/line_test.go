package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bnema/haptic-handshake/internal/adapters/serial"
	"github.com/bnema/haptic-handshake/internal/application"
	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	beginErr   error
	startErr   error
	endErr     error
	begins     []string
	released   []string
	holds      []bool
	status     application.Status
	notified   []domain.AgentID
	endedAgent []domain.AgentID
}

func (f *fakeController) Begin(agent domain.AgentID, profile domain.IntensityProfile) error {
	f.begins = append(f.begins, fmt.Sprintf("%s:%s", agent, profile))
	return f.beginErr
}

func (f *fakeController) NotifyStarted(agent domain.AgentID) error {
	f.notified = append(f.notified, agent)
	return f.startErr
}

func (f *fakeController) HandleEnd(agent domain.AgentID) error {
	f.endedAgent = append(f.endedAgent, agent)
	return f.endErr
}

func (f *fakeController) ForceRelease(reason string) {
	f.released = append(f.released, reason)
}

func (f *fakeController) SetHold(held bool) {
	f.holds = append(f.holds, held)
}

func (f *fakeController) Snapshot() application.Status {
	return f.status
}

type fakeCalibrator struct {
	baseline domain.CalibrationBaseline
	err      error
}

func (f fakeCalibrator) CalibrateNow(context.Context) (domain.CalibrationBaseline, error) {
	return f.baseline, f.err
}

func TestLineAdapterBeginResolvesProfilesAndTags(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "begin hand-1 strong", want: "hand-1:strong"},
		{line: "begin hand-1 Medium", want: "hand-1:middle"},
		{line: "begin hand-1 GrabC", want: "hand-1:strong"},
		{line: "begin hand-1 GrabB", want: "hand-1:middle"},
		{line: "begin hand-1 Mystery", want: "hand-1:weak"},
		{line: "begin hand-1", want: "hand-1:weak"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			controller := &fakeController{}
			adapter := NewLineAdapter(controller, nil, nil, logging.Discard())

			reply := adapter.Handle(context.Background(), tt.line)
			require.Equal(t, []string{tt.want}, controller.begins)
			assert.True(t, strings.HasPrefix(reply, "ok "))
		})
	}
}

func TestLineAdapterUsesConfiguredModes(t *testing.T) {
	controller := &fakeController{}
	modes := domain.ModeTable{{Tag: "Wave", Profile: domain.ProfileStrong}}
	adapter := NewLineAdapter(controller, nil, modes, logging.Discard())

	assert.Equal(t, "ok strong", adapter.Handle(context.Background(), "begin a Wave"))
	assert.Equal(t, "ok strong", adapter.Handle(context.Background(), "begin a GrabA"))
}

func TestLineAdapterReportsDenialReasons(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("%w: %w", domain.ErrSessionDenied, domain.ErrDeviceBusy), want: "denied busy"},
		{err: fmt.Errorf("%w: %w", domain.ErrSessionDenied, domain.ErrCooldownActive), want: "denied cooldown"},
		{err: domain.ErrCalibrationRequired, want: "denied calibration_required"},
		{err: errors.New("boom"), want: "denied boom"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			adapter := NewLineAdapter(&fakeController{beginErr: tt.err}, nil, nil, logging.Discard())
			assert.Equal(t, tt.want, adapter.Handle(context.Background(), "begin a weak"))
		})
	}
}

func TestLineAdapterTracksHandshakePresence(t *testing.T) {
	controller := &fakeController{}
	adapter := NewLineAdapter(controller, nil, nil, logging.Discard())
	ctx := context.Background()

	assert.False(t, adapter.HandshakeActive("a"))
	assert.Equal(t, "ok weak", adapter.Handle(ctx, "begin a weak"))
	assert.False(t, adapter.HandshakeActive("a"))

	assert.Equal(t, "ok", adapter.Handle(ctx, "start a"))
	assert.True(t, adapter.HandshakeActive("a"))
	assert.False(t, adapter.HandshakeActive("b"))

	assert.Equal(t, "ok", adapter.Handle(ctx, "end a"))
	assert.False(t, adapter.HandshakeActive("a"))
	assert.Equal(t, []domain.AgentID{"a"}, controller.notified)
	assert.Equal(t, []domain.AgentID{"a"}, controller.endedAgent)
}

func TestLineAdapterStartByNonOwnerIsNotActive(t *testing.T) {
	controller := &fakeController{startErr: fmt.Errorf("%w: %q", domain.ErrNotOwner, "b")}
	adapter := NewLineAdapter(controller, nil, nil, logging.Discard())

	assert.Equal(t, "error not_owner", adapter.Handle(context.Background(), "start b"))
	assert.False(t, adapter.HandshakeActive("b"))
}

func TestLineAdapterOperatorCommands(t *testing.T) {
	controller := &fakeController{status: application.Status{
		State:       domain.SessionRunning,
		Owner:       "a",
		Profile:     domain.ProfileMiddle,
		Elapsed:     1500 * time.Millisecond,
		Calibration: domain.CalibrationBaseline{IsSet: true},
	}}
	adapter := NewLineAdapter(controller, nil, nil, logging.Discard())
	ctx := context.Background()

	assert.Equal(t, "ok", adapter.Handle(ctx, "hold on"))
	assert.Equal(t, "ok", adapter.Handle(ctx, "HOLD off"))
	assert.Equal(t, "error usage: hold on|off", adapter.Handle(ctx, "hold maybe"))
	assert.Equal(t, []bool{true, false}, controller.holds)

	assert.Equal(t, "ok", adapter.Handle(ctx, "release"))
	assert.Equal(t, "ok", adapter.Handle(ctx, "release stuck animation"))
	assert.Equal(t, []string{"manual", "stuck animation"}, controller.released)

	assert.Equal(t,
		"ok state=running owner=a profile=middle elapsed=1.50s cooldown=0.00s held=false calibrated=true connected=false",
		adapter.Handle(ctx, "status"),
	)

	assert.Equal(t, "", adapter.Handle(ctx, "   "))
	assert.Equal(t, "", adapter.Handle(ctx, "# comment"))
	assert.Equal(t, `error unknown command "dance"`, adapter.Handle(ctx, "dance"))
	assert.Equal(t, "error usage: begin <agent> [profile|tag]", adapter.Handle(ctx, "begin"))
}

func TestLineAdapterCalibrate(t *testing.T) {
	ctx := context.Background()

	adapter := NewLineAdapter(&fakeController{}, nil, nil, logging.Discard())
	assert.Equal(t, "error calibration unavailable", adapter.Handle(ctx, "calibrate"))

	adapter = NewLineAdapter(&fakeController{}, fakeCalibrator{err: domain.ErrNoTelemetry}, nil, logging.Discard())
	assert.Equal(t, "error no_telemetry", adapter.Handle(ctx, "calibrate"))

	baseline := domain.CalibrationBaseline{Base: domain.EncoderPair{Left: 12, Right: -4}, IsSet: true}
	adapter = NewLineAdapter(&fakeController{}, fakeCalibrator{baseline: baseline}, nil, logging.Discard())
	assert.Equal(t, "ok 12 -4", adapter.Handle(ctx, "calibrate"))

	adapter = NewLineAdapter(&fakeController{}, fakeCalibrator{baseline: baseline, err: errors.New("disk full")}, nil, logging.Discard())
	assert.Equal(t, "ok 12 -4", adapter.Handle(ctx, "calibrate"))
}

func TestLineAdapterServeDrivesArbitrator(t *testing.T) {
	transport := serial.NewDisconnected(logging.Discard())
	t.Cleanup(func() { _ = transport.Close() })

	calibration := application.NewCalibrationStore(transport, nil, nil, logging.Discard())
	arbitrator := application.NewArbitrator(application.DefaultArbitratorConfig(), transport, calibration, nil, nil, logging.Discard())
	adapter := NewLineAdapter(arbitrator, calibration, domain.DefaultModes(), logging.Discard())
	arbitrator.SetPresence(adapter)

	input := strings.Join([]string{
		"begin left GrabB",
		"begin right strong",
		"start left",
		"calibrate",
		"end left",
		"status",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, adapter.Serve(context.Background(), strings.NewReader(input), &out))

	replies := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, replies, 6)
	assert.Equal(t, "ok middle", replies[0])
	assert.Equal(t, "denied busy", replies[1])
	assert.Equal(t, "ok", replies[2])
	assert.Equal(t, "error no_telemetry", replies[3])
	assert.Equal(t, "ok", replies[4])
	assert.True(t, strings.HasPrefix(replies[5], "ok state=draining owner=left profile=middle"))
	assert.False(t, adapter.HandshakeActive("left"))
}

func TestLineAdapterServeStopsOnCancelledContext(t *testing.T) {
	controller := &fakeController{}
	adapter := NewLineAdapter(controller, nil, nil, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := adapter.Serve(ctx, strings.NewReader("begin a weak\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, controller.begins)
	assert.Empty(t, out.String())
}
