package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init FILE",
	Short: "Write a starter behavior tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := args[0]
		if !strings.EqualFold(filepath.Ext(path), ".xml") {
			path += ".xml"
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		starter := dsl.New(
			dsl.Sequence(
				dsl.Action("SayHello").Param("message", "hello"),
				dsl.Decorator("Retry", dsl.Action("DoWork")).Param("attempts", "3"),
			).Name("main"),
		)
		if err := starter.Register(session.Editor.Registry()); err != nil {
			return err
		}
		tree, err := starter.Build()
		if err != nil {
			return err
		}
		if err := session.Editor.LoadTree(tree); err != nil {
			return err
		}
		written, err := session.Editor.SaveFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", written)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
