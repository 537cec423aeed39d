package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	statusadapter "github.com/bnema/haptic-handshake/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(c *cli) *cobra.Command {
	var sample time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show device link, telemetry and calibration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, c.app, sample, asJSON)
		},
	}

	cmd.Flags().DurationVar(&sample, "sample", 500*time.Millisecond, "How long to wait for a telemetry frame")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runStatus(cmd *cobra.Command, app *app, sample time.Duration, asJSON bool) error {
	dev, err := app.openDevice(cmd.Context())
	if err != nil {
		return err
	}
	defer dev.Close()

	dev.waitForTelemetry(cmd.Context(), sample)

	status := dev.arbitrator.Snapshot()
	stats := dev.transport.Stats()

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Port      string
			Status    any
			Transport any
		}{Port: app.config.Serial.Port, Status: status, Transport: stats})
	}

	rendered, err := app.statusRenderer(status, statusadapter.RenderOptions{
		Port:  app.config.Serial.Port,
		Stats: &stats,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
