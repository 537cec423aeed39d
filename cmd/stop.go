package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStopCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Send an immediate stop command to the actuator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := c.app.openDevice(cmd.Context())
			if err != nil {
				return err
			}
			defer dev.Close()

			if !dev.transport.Connected() {
				return fmt.Errorf("stop on %s: %w", c.app.config.Serial.Port, errDeviceNotConnected)
			}

			dev.arbitrator.ForceRelease("cli stop")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "stop sent")
			return err
		},
	}
}
