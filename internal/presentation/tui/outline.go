package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Outline renders a tree as a markdown document: a heading followed by a
// nested list in child order. Parameters are shown inline as code.
func Outline(title string, tree *domain.AbstractTree) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if tree == nil || tree.Root == nil {
		sb.WriteString("_empty tree_\n")
		return sb.String()
	}
	tree.Walk(func(n *domain.TreeNode, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("- ")
		sb.WriteString(item(n))
		sb.WriteString("\n")
		return true
	})
	return sb.String()
}

func item(n *domain.TreeNode) string {
	var sb strings.Builder
	switch n.Kind.Category() {
	case domain.CategoryRoot, domain.CategoryControl:
		fmt.Fprintf(&sb, "**%s**", n.Model)
	default:
		fmt.Fprintf(&sb, "%s `%s`", n.Kind, n.Model)
	}
	if n.Name != "" && n.Name != n.Model {
		fmt.Fprintf(&sb, " _%s_", n.Name)
	}
	for _, p := range n.Params {
		fmt.Fprintf(&sb, " `%s=%s`", p.Name, p.Value)
	}
	return sb.String()
}
