// Package layout provides a deterministic placeholder arranger for scenes
// built from trees.
package layout

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

const (
	// DefaultLevelGap is the distance between tree depths along the main axis.
	DefaultLevelGap = 200.0
	// DefaultSiblingGap is the distance between leaves along the cross axis.
	DefaultSiblingGap = 100.0
)

// Tidy places each node at its depth along the main axis and centers parents
// over their children along the cross axis. Leaves are spaced in depth-first
// order, so sibling order is preserved by position.
type Tidy struct {
	LevelGap   float64
	SiblingGap float64
}

// NewTidy returns an arranger with the default spacing.
func NewTidy() *Tidy {
	return &Tidy{LevelGap: DefaultLevelGap, SiblingGap: DefaultSiblingGap}
}

// Arrange implements ports.Arranger.
func (t *Tidy) Arrange(scene *domain.Scene, tree *domain.AbstractTree) error {
	if tree == nil || tree.Root == nil {
		return nil
	}
	level, sibling := t.LevelGap, t.SiblingGap
	if level == 0 {
		level = DefaultLevelGap
	}
	if sibling == 0 {
		sibling = DefaultSiblingGap
	}

	vertical := scene.Layout() == domain.LayoutVertical
	nextLeaf := 0.0

	var place func(n *domain.TreeNode, depth int) (float64, error)
	place = func(n *domain.TreeNode, depth int) (float64, error) {
		var cross float64
		if len(n.Children) == 0 {
			cross = nextLeaf * sibling
			nextLeaf++
		} else {
			first, last := 0.0, 0.0
			for i, c := range n.Children {
				pos, err := place(c, depth+1)
				if err != nil {
					return 0, err
				}
				if i == 0 {
					first = pos
				}
				last = pos
			}
			cross = (first + last) / 2
		}

		main := float64(depth) * level
		pos := domain.Position{X: main, Y: cross}
		if vertical {
			pos = domain.Position{X: cross, Y: main}
		}
		if err := scene.Move(n.ID, pos); err != nil {
			return 0, fmt.Errorf("place %s: %w", n.ID, err)
		}
		return cross, nil
	}

	_, err := place(tree.Root, 0)
	return err
}
