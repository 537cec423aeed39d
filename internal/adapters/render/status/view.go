package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/haptic-handshake/internal/application"
	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/bnema/haptic-handshake/internal/ports"
	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 24

type RenderOptions struct {
	Port  string
	Stats *ports.TransportStats
}

func renderView(status application.Status, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Haptic Handshake Device"),
		s.header.Render(linkLine(status, opts)),
		s.section.Render(renderSession(status, s)),
		s.section.Render(renderDevice(status, s)),
	}

	if opts.Stats != nil {
		lines = append(lines, s.section.Render(renderStats(*opts.Stats, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func linkLine(status application.Status, opts RenderOptions) string {
	port := strings.TrimSpace(opts.Port)
	if port == "" {
		port = "serial"
	}
	if status.Connected {
		return fmt.Sprintf("port: %s (connected)", port)
	}
	return fmt.Sprintf("port: %s (not connected, commands dropped)", port)
}

func renderSession(status application.Status, s styles) string {
	state := status.State
	if state == "" {
		state = domain.SessionIdle
	}

	title := "session: " + string(state)
	if status.Owner != "" {
		title = fmt.Sprintf("session: %s %s (%s)", state, status.Owner, status.Profile.Label())
	}
	if status.Held {
		title += " " + s.warning.Render("[hold]")
	}

	parts := []string{s.state.Render(title)}
	if status.SynthesizerActive {
		parts = append(parts, progressLine(status.Elapsed, status.Duration, s))
	}
	if status.WatchdogRemaining > 0 {
		parts = append(parts, s.detail.Render("watchdog: "+formatSeconds(status.WatchdogRemaining)))
	}
	if status.CooldownRemaining > 0 {
		parts = append(parts, s.detail.Render("cooldown: "+formatSeconds(status.CooldownRemaining)+" left"))
	} else if status.Owner == "" && !status.SynthesizerActive {
		parts = append(parts, s.ok.Render("ready for next session"))
	}
	if status.LastRelease != "" {
		parts = append(parts, s.meta.Render(fmt.Sprintf("last release: %s (%d sessions)", status.LastRelease, status.Sessions)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func progressLine(elapsed, total time.Duration, s styles) string {
	percent := 0.0
	if total > 0 {
		percent = clampPercent(100 * float64(elapsed) / float64(total))
	}

	meta := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100)).
		Render(fmt.Sprintf("%s / %s", formatSeconds(elapsed), formatSeconds(total)))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render("motion:"),
		" ",
		renderProgressBar(percent, progressWidth, s),
		" ",
		meta,
	)
}

func renderDevice(status application.Status, s styles) string {
	parts := make([]string, 0, 3)

	if status.HasTelemetry {
		parts = append(parts, s.detail.Render(fmt.Sprintf("telemetry: left %d right %d", status.Telemetry.Left, status.Telemetry.Right)))
	} else {
		parts = append(parts, s.empty.Render("telemetry: no frames received"))
	}

	if !status.Calibration.IsSet {
		parts = append(parts, s.warning.Render("baseline: not calibrated (targets follow current position)"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	base := status.Calibration.Base
	baseline := fmt.Sprintf("baseline: left %d right %d", base.Left, base.Right)
	if !status.Calibration.CapturedAt.IsZero() {
		baseline += " " + s.meta.Render("(captured "+status.Calibration.CapturedAt.Local().Format("15:04 on 02 Jan")+")")
	}
	parts = append(parts, s.detail.Render(baseline))

	if status.HasTelemetry {
		offset := status.Telemetry.Pair().Sub(base)
		parts = append(parts, s.detail.Render(fmt.Sprintf("offset: %+d / %+d", offset.Left, offset.Right)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderStats(stats ports.TransportStats, s styles) string {
	line := s.meta.Render(fmt.Sprintf("frames: %d  discarded bytes: %d  writes: %d",
		stats.FramesDecoded, stats.BytesDiscarded, stats.Writes))
	if stats.WriteFailures > 0 {
		line += "  " + s.warning.Render(fmt.Sprintf("write failures: %d", stats.WriteFailures))
	}
	return line
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
