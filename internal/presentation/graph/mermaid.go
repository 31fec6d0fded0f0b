// Package graph renders scenes as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay marks nodes to highlight on the chart.
type Overlay struct {
	// Flagged nodes are drawn with the issue style (e.g. validator findings).
	Flagged []string
	// Selected is drawn with the selection style.
	Selected string
}

// GenerateMermaid produces a Mermaid flowchart of the scene. The direction
// follows the scene layout and children are listed in drawing order, so the
// chart reads like the exported tree. Shapes follow the node category:
//   - Root: ((Circle))
//   - Control: {{Hexagon}}
//   - Decorator: [/Parallelogram/]
//   - SubTree: [[Subroutine]]
//   - Action: [Rectangle]
func GenerateMermaid(scene *domain.Scene, overlay *Overlay) string {
	var sb strings.Builder
	if scene.Layout() == domain.LayoutVertical {
		sb.WriteString("graph TD\n")
	} else {
		sb.WriteString("graph LR\n")
	}

	for _, node := range scene.Nodes() {
		safeID := sanitizeMermaidID(node.ID)
		opener, closer := shape(node.Kind)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(node), closer)
	}
	for _, node := range scene.Nodes() {
		for i, child := range scene.Children(node.ID) {
			arrow := "-->"
			if node.Kind.Category() == domain.CategoryControl {
				arrow = fmt.Sprintf("-- %d -->", i+1)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(node.ID), arrow, sanitizeMermaidID(child))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef flagged fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Flagged {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s flagged;\n", safeID)
			}
		}
		if overlay.Selected != "" {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func shape(k domain.Kind) (string, string) {
	switch k.Category() {
	case domain.CategoryRoot:
		return "((", "))"
	case domain.CategoryControl:
		return "{{", "}}"
	case domain.CategoryDecorator:
		return "[/", "/]"
	case domain.CategorySubTree:
		return "[[", "]]"
	default:
		return "[", "]"
	}
}

func label(n domain.SceneNode) string {
	text := n.Model
	if n.Name != "" && n.Name != n.Model {
		text = n.Name + " <br/> " + n.Model
	}
	for _, p := range n.Params {
		text += fmt.Sprintf(" <br/> %s=%s", p.Name, p.Value)
	}
	return strings.ReplaceAll(text, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
