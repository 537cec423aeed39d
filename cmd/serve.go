package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/haptic-handshake/internal/adapters/agent"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Arbitrate the device for agents speaking the line protocol on stdin",
		Long: `serve reads one request per line on stdin and answers on stdout:

  begin <agent> [profile|tag]   claim the device
  start <agent>                 the agent's animation started
  end <agent>                   the agent's animation ended
  calibrate                     capture the current position as baseline
  hold on|off                   freeze the actuator
  release [reason]              force the current session to end
  status                        one-line device status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, c.app)
		},
	}
}

func runServe(cmd *cobra.Command, app *app) error {
	ctx := cmd.Context()

	dev, err := app.openDevice(ctx)
	if err != nil {
		return err
	}
	defer dev.Close()

	adapter := agent.NewLineAdapter(dev.arbitrator, dev.calibration, app.config.Modes, app.logger)
	dev.arbitrator.SetPresence(adapter)

	hostCtx, cancelHost := context.WithCancel(ctx)
	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		_ = dev.host.Run(hostCtx)
	}()

	app.logger.Info("serving agents", "port", app.config.Serial.Port, "connected", dev.transport.Connected())

	// The reader may block on stdin, so cancellation is watched separately.
	served := make(chan error, 1)
	go func() {
		served <- adapter.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}()

	var serveErr error
	select {
	case serveErr = <-served:
	case <-ctx.Done():
		serveErr = ctx.Err()
	}

	cancelHost()
	<-hostDone

	if dev.arbitrator.IsSessionActive() {
		dev.arbitrator.ForceRelease("shutdown")
		dev.drain(app.config.Session.Settle + time.Second)
	}

	if errors.Is(serveErr, context.Canceled) {
		return nil
	}
	return serveErr
}
