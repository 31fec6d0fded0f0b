package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [FILE]",
	Short: "Edit behavior trees interactively",
	Long: `Starts a line-oriented editing session. Type "help" for the command list.
Commands are read from stdin, so scripts can be piped in.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		interactive := isTerminal(os.Stdin)
		out := cmd.OutOrStdout()
		if interactive {
			tui.PrintBanner(out)
		}
		if len(args) == 1 {
			if err := session.Editor.LoadFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, ">>> Loaded %s\n", args[0])
		}

		repl := &cli.Repl{
			Editor: session.Editor,
			In:     cmd.InOrStdin(),
			Out:    out,
			Prompt: interactive,
			Logger: session.Logger,
		}
		if err := repl.Run(ctx); err != nil && !cli.IsInterrupted(err) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
