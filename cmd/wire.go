package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	statusadapter "github.com/bnema/haptic-handshake/internal/adapters/render/status"
	tomlrepo "github.com/bnema/haptic-handshake/internal/adapters/repo/toml"
	"github.com/bnema/haptic-handshake/internal/adapters/serial"
	"github.com/bnema/haptic-handshake/internal/application"
	"github.com/bnema/haptic-handshake/internal/config"
	"github.com/bnema/haptic-handshake/internal/logging"
	"github.com/bnema/haptic-handshake/internal/ports"
	"github.com/spf13/viper"
)

var errDeviceNotConnected = errors.New("device not connected")

type globalOptions struct {
	configFile string
	port       string
	logLevel   string
}

type app struct {
	config         config.Config
	viper          *viper.Viper
	logger         *slog.Logger
	statusRenderer func(application.Status, statusadapter.RenderOptions) (string, error)
	openSerial     func(serial.Config, *slog.Logger) (*serial.Transport, error)
	now            func() time.Time
}

// device is the runtime graph around one serial link.
type device struct {
	transport   *serial.Transport
	calibration *application.CalibrationStore
	arbitrator  *application.Arbitrator
	host        *application.Host
	repoPath    string
}

func wireApp(opts globalOptions, stderr io.Writer) (*app, error) {
	v := viper.New()
	if opts.port != "" {
		v.Set("serial.port", opts.port)
	}
	if opts.logLevel != "" {
		v.Set("log.level", opts.logLevel)
	}

	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &app{
		config:         cfg,
		viper:          v,
		logger:         logging.New(stderr, cfg.Log.Level, cfg.Log.Format),
		statusRenderer: statusadapter.Render,
		openSerial:     serial.Open,
		now:            time.Now,
	}, nil
}

// openDevice connects to the actuator. When the port cannot be opened the
// graph is still built around a disconnected transport that drops commands.
func (a *app) openDevice(ctx context.Context) (*device, error) {
	transport, err := a.openSerial(serial.Config{
		Port:        a.config.Serial.Port,
		Baud:        a.config.Serial.Baud,
		ReadTimeout: a.config.Serial.ReadTimeout,
	}, a.logger)
	if err != nil {
		a.logger.Warn("running without device", "port", a.config.Serial.Port, "error", err)
		transport = serial.NewDisconnected(a.logger)
	}

	repo, err := tomlrepo.NewRepository(a.viper)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("wire calibration repository: %w", err)
	}

	clock := ports.SystemClock{}
	calibration := application.NewCalibrationStore(transport, repo, clock, a.logger)
	if a.config.Calibration.Restore {
		if _, err := calibration.Restore(ctx); err != nil {
			a.logger.Warn("could not restore calibration", "path", repo.Path(), "error", err)
		}
	}

	arbitrator := application.NewArbitrator(a.arbitratorConfig(), transport, calibration, nil, clock, a.logger)

	return &device{
		transport:   transport,
		calibration: calibration,
		arbitrator:  arbitrator,
		host:        application.NewHost(arbitrator, a.config.Host.TickInterval(), clock, a.logger),
		repoPath:    repo.Path(),
	}, nil
}

func (a *app) arbitratorConfig() application.ArbitratorConfig {
	return application.ArbitratorConfig{
		Duration:           a.config.Session.Duration,
		Cooldown:           a.config.Session.Cooldown,
		WatchdogSlack:      a.config.Session.WatchdogSlack,
		Settle:             a.config.Session.Settle,
		PendingTimeout:     a.config.Session.PendingTimeout,
		RequireCalibration: a.config.Session.RequireCalibration,
		Scale:              a.config.Motion.Scale(),
		Profiles:           a.config.Profiles,
	}
}

func (d *device) Close() error {
	return d.transport.Close()
}

// waitForTelemetry polls until a frame has been decoded or timeout passes.
func (d *device) waitForTelemetry(ctx context.Context, timeout time.Duration) bool {
	if !d.transport.Connected() {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, ok := d.transport.Latest(); ok {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// drain keeps the host loop running until the current session has returned
// to its origin and stopped, or until timeout.
func (d *device) drain(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.host.Run(ctx)
	}()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for d.arbitrator.IsSessionActive() {
		select {
		case <-ctx.Done():
			<-done
			return
		case <-ticker.C:
		}
	}

	cancel()
	<-done
}
