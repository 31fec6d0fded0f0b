package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultWidth = 80

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Render a behavior tree in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		ed := session.Editor
		if err := ed.LoadXML(data); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		width := defaultWidth
		if isTerminal(os.Stdout) {
			tui.PrintBanner(out)
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		text, err := render(tui.Outline(args[0], ed.Tree()))
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)

		st := ed.Status()
		label := "valid"
		if !st.Valid {
			label = "invalid, run validate for details"
		}
		fmt.Fprintln(out, tui.Semaphore(st.Valid, fmt.Sprintf("%d nodes, %s", st.Nodes, label)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
