package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mirokim/Onion-ring/internal/store"
)

func newExportCmd(app *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a saved session transcript as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, msgs, err := app.store.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer file.Close()
				out = file
			}
			return store.ExportMarkdown(out, cfg, msgs)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
