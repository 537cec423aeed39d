// Package agent connects external animation drivers to the arbitrator over a
// newline-delimited text protocol:
//
//	begin <agent> [profile|tag]   -> ok <profile> | denied <reason>
//	start <agent>                 -> ok | error <reason>
//	end <agent>                   -> ok | error <reason>
//	calibrate                     -> ok <left> <right> | error <reason>
//	hold on|off                   -> ok
//	release [reason]              -> ok
//	status                        -> ok key=value ...
package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/bnema/haptic-handshake/internal/application"
	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/bnema/haptic-handshake/internal/ports"
)

type Controller interface {
	Begin(agent domain.AgentID, profile domain.IntensityProfile) error
	NotifyStarted(agent domain.AgentID) error
	HandleEnd(agent domain.AgentID) error
	ForceRelease(reason string)
	SetHold(held bool)
	Snapshot() application.Status
}

type Calibrator interface {
	CalibrateNow(ctx context.Context) (domain.CalibrationBaseline, error)
}

// LineAdapter tracks which agents are mid-handshake and reports it to
// running sessions through ports.AgentPresence.
type LineAdapter struct {
	controller Controller
	calibrator Calibrator
	modes      domain.ModeTable
	logger     *slog.Logger

	mu     sync.Mutex
	active map[domain.AgentID]bool
}

var _ ports.AgentPresence = (*LineAdapter)(nil)

func NewLineAdapter(controller Controller, calibrator Calibrator, modes domain.ModeTable, logger *slog.Logger) *LineAdapter {
	if len(modes) == 0 {
		modes = domain.DefaultModes()
	}

	return &LineAdapter{
		controller: controller,
		calibrator: calibrator,
		modes:      modes,
		logger:     logging.Component(logger, "agent"),
		active:     map[domain.AgentID]bool{},
	}
}

func (a *LineAdapter) HandshakeActive(id domain.AgentID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.active[id]
}

// Serve answers one line per request until r is exhausted or ctx is done.
// Cancellation is only observed between lines, so a read blocked on r keeps
// Serve running until the next line or EOF arrives.
func (a *LineAdapter) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		reply := a.Handle(ctx, scanner.Text())
		if reply == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, reply); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	return nil
}

// Handle executes a single request line and returns the reply. Blank lines
// and comments produce no reply.
func (a *LineAdapter) Handle(ctx context.Context, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return ""
	}

	verb, args := strings.ToLower(fields[0]), fields[1:]
	a.logger.Debug("request", "verb", verb, "args", args)

	switch verb {
	case "begin":
		return a.begin(args)
	case "start":
		return a.start(args)
	case "end":
		return a.end(args)
	case "calibrate":
		return a.calibrate(ctx)
	case "hold":
		return a.hold(args)
	case "release":
		reason := "manual"
		if len(args) > 0 {
			reason = strings.Join(args, " ")
		}
		a.controller.ForceRelease(reason)
		return "ok"
	case "status":
		return formatStatus(a.controller.Snapshot())
	default:
		return fmt.Sprintf("error unknown command %q", verb)
	}
}

// ResolveProfile accepts a profile name or a mode tag. Unknown tags fall back
// to the first configured mode.
func (a *LineAdapter) ResolveProfile(arg string) domain.IntensityProfile {
	if profile, err := domain.ParseIntensityProfile(arg); err == nil {
		return profile
	}

	mode, ok := a.modes.Resolve(arg)
	if !ok && strings.TrimSpace(arg) != "" {
		a.logger.Warn("unknown mode tag, using default", "tag", arg, "profile", mode.Profile)
	}
	return mode.Profile
}

func (a *LineAdapter) begin(args []string) string {
	if len(args) == 0 {
		return "error usage: begin <agent> [profile|tag]"
	}

	id := domain.AgentID(args[0])
	var selector string
	if len(args) > 1 {
		selector = args[1]
	}
	profile := a.ResolveProfile(selector)

	if err := a.controller.Begin(id, profile); err != nil {
		return "denied " + denialReason(err)
	}

	a.setActive(id, false)
	return "ok " + string(profile)
}

func (a *LineAdapter) start(args []string) string {
	if len(args) == 0 {
		return "error usage: start <agent>"
	}

	id := domain.AgentID(args[0])
	a.setActive(id, true)
	if err := a.controller.NotifyStarted(id); err != nil {
		a.setActive(id, false)
		return "error " + denialReason(err)
	}
	return "ok"
}

func (a *LineAdapter) end(args []string) string {
	if len(args) == 0 {
		return "error usage: end <agent>"
	}

	id := domain.AgentID(args[0])
	a.setActive(id, false)
	if err := a.controller.HandleEnd(id); err != nil {
		return "error " + denialReason(err)
	}
	return "ok"
}

func (a *LineAdapter) calibrate(ctx context.Context) string {
	if a.calibrator == nil {
		return "error calibration unavailable"
	}

	baseline, err := a.calibrator.CalibrateNow(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoTelemetry) {
			return "error no_telemetry"
		}
		if !baseline.IsSet {
			return "error " + err.Error()
		}
		a.logger.Warn("baseline captured but not persisted", "error", err)
	}
	return fmt.Sprintf("ok %d %d", baseline.Base.Left, baseline.Base.Right)
}

func (a *LineAdapter) hold(args []string) string {
	if len(args) != 1 {
		return "error usage: hold on|off"
	}

	switch strings.ToLower(args[0]) {
	case "on":
		a.controller.SetHold(true)
	case "off":
		a.controller.SetHold(false)
	default:
		return "error usage: hold on|off"
	}
	return "ok"
}

func (a *LineAdapter) setActive(id domain.AgentID, active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if active {
		a.active[id] = true
		return
	}
	delete(a.active, id)
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDeviceBusy):
		return "busy"
	case errors.Is(err, domain.ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, domain.ErrCalibrationRequired):
		return "calibration_required"
	case errors.Is(err, domain.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, domain.ErrUnknownProfile):
		return "unknown_profile"
	default:
		return err.Error()
	}
}

func formatStatus(status application.Status) string {
	owner := string(status.Owner)
	if owner == "" {
		owner = "-"
	}

	return fmt.Sprintf("ok state=%s owner=%s profile=%s elapsed=%.2fs cooldown=%.2fs held=%t calibrated=%t connected=%t",
		status.State,
		owner,
		orDash(string(status.Profile)),
		status.Elapsed.Seconds(),
		status.CooldownRemaining.Seconds(),
		status.Held,
		status.Calibration.IsSet,
		status.Connected,
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
