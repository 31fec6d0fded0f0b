package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/btxml"
	"github.com/aretw0/arbor/pkg/domain"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export a behavior tree to another format",
	Long: `Loads an XML document and writes it as xml (normalized), json (the
abstract tree), mermaid (a flowchart) or markdown (a nested outline).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

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

		var out []byte
		switch format {
		case "xml":
			out, err = btxml.Marshal(ed.Tree(), ed.Registry())
		case "json":
			out, err = json.MarshalIndent(ed.Tree(), "", "  ")
			out = append(out, '\n')
		case "mermaid":
			ed.View(func(scene *domain.Scene) {
				out = []byte(graph.GenerateMermaid(scene, nil) + "\n")
			})
		case "markdown", "md":
			out = []byte(tui.Outline(args[0], ed.Tree()))
		default:
			return fmt.Errorf("unknown format %q (want xml, json, mermaid or markdown)", format)
		}
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		_, err = w.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "mermaid", "Output format: xml, json, mermaid or markdown")
	exportCmd.Flags().StringP("out", "o", "", "Write to a file instead of stdout")
}
