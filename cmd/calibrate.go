package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/spf13/cobra"
)

func newCalibrateCmd(c *cli) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Capture the current encoder position as the zero baseline",
		Long:  "calibrate waits for telemetry from the device, stores the current encoder counts as the baseline and saves it to the calibration file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalibrate(cmd, c.app, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "How long to wait for telemetry")

	return cmd
}

func runCalibrate(cmd *cobra.Command, app *app, timeout time.Duration) error {
	dev, err := app.openDevice(cmd.Context())
	if err != nil {
		return err
	}
	defer dev.Close()

	if !dev.transport.Connected() {
		return fmt.Errorf("calibrate on %s: %w", app.config.Serial.Port, errDeviceNotConnected)
	}

	ctx := cmd.Context()
	baseline, err := runCalibrationProgress(ctx, cmd.ErrOrStderr(), calibrationProgressOptions{
		port:    app.config.Serial.Port,
		timeout: timeout,
		started: app.now(),
		latest:  dev.transport.Latest,
		capture: func() (domain.CalibrationBaseline, error) {
			return dev.calibration.CalibrateNow(ctx)
		},
	})
	if err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "baseline: left %d right %d (saved to %s)\n",
		baseline.Base.Left, baseline.Base.Right, dev.repoPath)
	return err
}
