package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mirokim/Onion-ring/internal/engine"
	"github.com/mirokim/Onion-ring/internal/tui"
)

func newRunCmd(app *app) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "run <session.yaml>",
		Short: "Run a debate session from a session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, creds, err := app.cfg.LoadSession(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if headless {
				host := newConsoleHost(cmd.OutOrStdout(), cmd.InOrStdin())
				eng, err := engine.New(cfg, creds, app.client(), host,
					engine.WithLogger(app.log),
					engine.WithArchiver(app.store),
				)
				if err != nil {
					return err
				}
				state, err := eng.Run(ctx)
				if err != nil && !errors.Is(err, engine.ErrStopped) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nsession %s finished: %s\n", cfg.ID, state)
				return nil
			}

			relay := tui.NewRelay()
			eng, err := engine.New(cfg, creds, app.client(), relay,
				engine.WithLogger(app.log),
				engine.WithArchiver(app.store),
			)
			if err != nil {
				return err
			}
			return tui.Run(ctx, eng, relay)
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "print the transcript to stdout instead of opening the TUI")
	return cmd
}
