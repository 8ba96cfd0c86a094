package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"ls"},
		Short:   "List saved session transcripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := app.store.List()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved sessions")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	return cmd
}
