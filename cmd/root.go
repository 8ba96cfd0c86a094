package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "onionring",
		Short:         "Onion Ring: multi-model debate sessions in your terminal",
		Long:          "onionring runs structured conversations between AI participants — debates, discussions, role play, and artwork critique — with a judge, pacing control, and saved transcripts.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newSessionsCmd(app),
		newExportCmd(app),
	)

	return rootCmd
}
