package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow a live behavior tree",
	Long: `Switches the editor to monitor mode and displays every tree fed by a
websocket source (--url, e.g. ws://host:8080/monitor) or by a file that
is re-read when it changes (--file). Edits are locked while monitoring.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		path, _ := cmd.Flags().GetString("file")

		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.RunMonitor(ctx, session.Editor, cli.MonitorOptions{
			URL:    url,
			File:   path,
			Out:    cmd.OutOrStdout(),
			Logger: session.Logger,
		})
		if err != nil && !cli.IsInterrupted(err) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().String("url", "", "Websocket feed to follow")
	monitorCmd.Flags().String("file", "", "XML file to follow")
	monitorCmd.MarkFlagsMutuallyExclusive("url", "file")
}
