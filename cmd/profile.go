package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bnema/haptic-handshake/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(c *cli) *cobra.Command {
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "profile <weak|middle|strong>",
		Short: "Print the motion targets a profile produces over a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd, c.app, args[0], step)
		},
	}

	cmd.Flags().DurationVar(&step, "step", 250*time.Millisecond, "Sampling interval")

	return cmd
}

func runProfile(cmd *cobra.Command, app *app, raw string, step time.Duration) error {
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %s", step)
	}

	profile, err := domain.ParseIntensityProfile(raw)
	if err != nil {
		return err
	}

	params, ok := app.config.Profiles[profile]
	if !ok {
		return fmt.Errorf("%w: %q is not configured", domain.ErrUnknownProfile, profile)
	}
	params = params.Scaled(app.config.Session.Duration)
	scale := app.config.Motion.Scale()

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s profile, %s, amplitude %g\n", profile.Label(), params.Duration(), params.Amplitude); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "t\tgrip\tbalance\tA mm\tB mm\tA enc\tB enc\t")
	for t := time.Duration(0); t <= params.Duration(); t += step {
		aMM, bMM := scale.Displacement(params, t)
		target := scale.Target(params, t)
		fmt.Fprintf(w, "%.2fs\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%d\t\n",
			t.Seconds(), params.Envelope(t), params.BalanceAt(t), aMM, bMM, target.Left, target.Right)
	}

	return w.Flush()
}
