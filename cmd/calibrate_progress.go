package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const telemetryPollInterval = 50 * time.Millisecond

type telemetryPollMsg time.Time

type baselineCapturedMsg struct {
	baseline domain.CalibrationBaseline
	err      error
}

// calibrationProgress waits for the first telemetry frame, then captures it
// as the baseline. The spinner line shows which of the two it is doing.
type calibrationProgress struct {
	spinner spinner.Model
	port    string
	timeout time.Duration
	started time.Time
	latest  func() (domain.TelemetrySample, bool)
	capture func() (domain.CalibrationBaseline, error)

	waited    time.Duration
	sample    domain.TelemetrySample
	capturing bool
	done      bool
	baseline  domain.CalibrationBaseline
	err       error
}

type calibrationProgressOptions struct {
	port    string
	timeout time.Duration
	started time.Time
	latest  func() (domain.TelemetrySample, bool)
	capture func() (domain.CalibrationBaseline, error)
}

func newCalibrationProgress(opts calibrationProgressOptions) calibrationProgress {
	return calibrationProgress{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("214"))),
		),
		port:    opts.port,
		timeout: opts.timeout,
		started: opts.started,
		latest:  opts.latest,
		capture: opts.capture,
	}
}

func (m calibrationProgress) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, pollTelemetry())
}

func (m calibrationProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case telemetryPollMsg:
		if m.capturing || m.done {
			return m, nil
		}
		m.waited = time.Time(msg).Sub(m.started)
		if sample, ok := m.latest(); ok {
			m.sample = sample
			m.capturing = true
			capture := m.capture
			return m, func() tea.Msg {
				baseline, err := capture()
				return baselineCapturedMsg{baseline: baseline, err: err}
			}
		}
		if m.waited >= m.timeout {
			m.done = true
			m.err = fmt.Errorf("no frame from %s within %s: %w", m.port, m.timeout, domain.ErrNoTelemetry)
			return m, tea.Quit
		}
		return m, pollTelemetry()

	case baselineCapturedMsg:
		m.done = true
		m.baseline = msg.baseline
		m.err = msg.err
		return m, tea.Quit

	default:
		return m, nil
	}
}

func (m calibrationProgress) View() string {
	if m.done {
		return ""
	}
	if m.capturing {
		return fmt.Sprintf("%s capturing baseline at left %d right %d", m.spinner.View(), m.sample.Left, m.sample.Right)
	}
	return fmt.Sprintf("%s waiting for telemetry on %s (%s)", m.spinner.View(), m.port, m.waited.Round(100*time.Millisecond))
}

func pollTelemetry() tea.Cmd {
	return tea.Tick(telemetryPollInterval, func(t time.Time) tea.Msg {
		return telemetryPollMsg(t)
	})
}

// runCalibrationProgress drives the model on output until the baseline is
// captured, the wait times out or ctx is cancelled.
func runCalibrationProgress(ctx context.Context, output io.Writer, opts calibrationProgressOptions) (domain.CalibrationBaseline, error) {
	p := tea.NewProgram(
		newCalibrationProgress(opts),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return domain.CalibrationBaseline{}, err
	}

	result, ok := finalModel.(calibrationProgress)
	if !ok {
		return domain.CalibrationBaseline{}, fmt.Errorf("unexpected final calibration model type %T", finalModel)
	}

	return result.baseline, result.err
}
