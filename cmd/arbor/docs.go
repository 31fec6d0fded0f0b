package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/sanitize"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage documents in the configured store",
	Long:  `List, import, print, remove and watch documents held by the --store backend.`,
}

var docsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		names, err := session.Library.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "No documents found.")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(out, "- "+n)
		}
		return nil
	},
}

var docsImportCmd = &cobra.Command{
	Use:   "import FILE [NAME]",
	Short: "Validate an XML file and store it",
	Long:  `Stores FILE under NAME (default: the file name without extension). The document must load and export cleanly.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		if len(args) == 2 {
			name = args[1]
		}
		name, err := sanitize.Name(name)
		if err != nil {
			return err
		}

		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := session.Editor.LoadXML(data); err != nil {
			return err
		}
		if err := session.Editor.Save(cmd.Context(), name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored '%s'\n", name)
		return nil
	},
}

var docsCatCmd = &cobra.Command{
	Use:   "cat NAME",
	Short: "Print a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		data, err := session.Library.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var docsRmCmd = &cobra.Command{
	Use:   "rm NAME...",
	Short: "Remove one or more documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()

		var errs []error
		for _, name := range args {
			if err := session.Library.Delete(cmd.Context(), name); err != nil {
				errs = append(errs, fmt.Errorf("remove '%s': %w", name, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed '%s'\n", name)
		}
		return errors.Join(errs...)
	},
}

var docsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the document list whenever the store changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer session.Close()
		if session.Watchable == nil {
			return fmt.Errorf("the selected store cannot be watched")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		changes, err := session.Watchable.Watch(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for range changes {
			names, err := session.Library.List(ctx)
			if err != nil {
				session.Logger.Warn("List failed", "err", err)
				continue
			}
			fmt.Fprintf(out, ">>> %d documents: %s\n", len(names), strings.Join(names, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsLsCmd, docsImportCmd, docsCatCmd, docsRmCmd, docsWatchCmd)
}
