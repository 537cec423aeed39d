package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

// cli carries the flags shared by every subcommand and the app wired from them.
type cli struct {
	opts globalOptions
	app  *app
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "hs",
		Short:         "Haptic handshake controller (hs): drive the two-finger handshake actuator",
		Long:          "hs controls a two-finger haptic actuator over a serial link: it calibrates the encoders, plays intensity profiles, arbitrates device ownership between agents and reports device status.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(c.opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.opts.configFile, "config", "", "Config file (default ~/.haptics/config.toml)")
	flags.StringVar(&c.opts.port, "port", "", "Serial port override")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newProfileCmd(c),
		newCalibrateCmd(c),
		newStatusCmd(c),
		newStopCmd(c),
		newShakeCmd(c),
		newServeCmd(c),
	)

	return rootCmd
}
