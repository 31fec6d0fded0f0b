package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check behavior tree documents",
	Long: `Parses each document, checks its node models, and reports structural
issues. Exits non-zero when a document cannot be loaded or saved as is.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if err := validateFile(cmd, path); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), tui.Semaphore(false, fmt.Sprintf("%s: %v", path, err)))
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateFile(cmd *cobra.Command, path string) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := session.Editor.LoadXML(data); err != nil {
		return err
	}

	issues := session.Editor.Diagnose()
	var shapeErr error
	session.Editor.View(func(scene *domain.Scene) {
		shapeErr = validator.Check(scene)
	})
	out := cmd.OutOrStdout()
	for _, issue := range issues {
		fmt.Fprintln(out, tui.Semaphore(false, fmt.Sprintf("%s: %s", path, issue)))
	}
	if shapeErr != nil {
		return shapeErr
	}
	st := session.Editor.Status()
	fmt.Fprintln(out, tui.Semaphore(true, fmt.Sprintf("%s: %d nodes", path, st.Nodes)))
	return nil
}
