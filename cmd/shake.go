package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/haptic-handshake/internal/adapters/agent"
	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/spf13/cobra"
)

func newShakeCmd(c *cli) *cobra.Command {
	var agentID string

	cmd := &cobra.Command{
		Use:   "shake [profile|tag]",
		Short: "Play one handshake session on the device",
		Long:  "shake claims the device, plays the selected profile for the configured session duration, returns to the baseline and stops. Ctrl-C aborts the session safely.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var selector string
			if len(args) > 0 {
				selector = args[0]
			}
			return runShake(cmd, c.app, domain.AgentID(agentID), selector)
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "cli", "Agent id that owns the session")

	return cmd
}

func runShake(cmd *cobra.Command, app *app, id domain.AgentID, selector string) error {
	ctx := cmd.Context()

	dev, err := app.openDevice(ctx)
	if err != nil {
		return err
	}
	defer dev.Close()

	if !dev.transport.Connected() {
		app.logger.Warn("device not connected, motion commands will be dropped", "port", app.config.Serial.Port)
	}

	resolver := agent.NewLineAdapter(dev.arbitrator, dev.calibration, app.config.Modes, app.logger)
	profile := resolver.ResolveProfile(selector)

	if err := dev.arbitrator.Begin(id, profile); err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	if err := dev.arbitrator.NotifyStarted(id); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	started := app.now()

	hostCtx, cancelHost := context.WithCancel(context.Background())
	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		_ = dev.host.Run(hostCtx)
	}()
	defer func() {
		cancelHost()
		<-hostDone
	}()

	interrupted := ctx.Done()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for dev.arbitrator.IsSessionActive() {
		select {
		case <-interrupted:
			dev.arbitrator.ForceRelease("interrupted")
			interrupted = nil
		case <-ticker.C:
		}
	}

	status := dev.arbitrator.Snapshot()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s session %s after %s\n",
		profile.Label(), status.LastRelease, app.now().Sub(started).Round(10*time.Millisecond))
	return err
}
