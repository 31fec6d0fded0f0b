package convert

import (
	"github.com/aretw0/arbor/pkg/domain"
)

// BuildTreeFromScene reads the scene into an AbstractTree.
//
// The tree is rooted at the single parentless node when there is exactly one;
// otherwise at the first parentless Root node, then the first parentless node.
// An empty scene, or one with no parentless node, yields a tree with a nil Root.
// Nodes reachable through more than one path are emitted once.
func BuildTreeFromScene(scene *domain.Scene) *domain.AbstractTree {
	tree := &domain.AbstractTree{}
	rootID, ok := pickRoot(scene)
	if !ok {
		return tree
	}

	visited := make(map[string]bool)
	var build func(id string) *domain.TreeNode
	build = func(id string) *domain.TreeNode {
		visited[id] = true
		n, _ := scene.Node(id)
		tn := &domain.TreeNode{
			ID:     n.ID,
			Kind:   n.Kind,
			Model:  n.Model,
			Name:   n.Name,
			Params: n.Params,
		}
		for _, child := range scene.Children(id) {
			if visited[child] {
				continue
			}
			tn.Children = append(tn.Children, build(child))
		}
		return tn
	}

	tree.Root = build(rootID)
	return tree
}

func pickRoot(scene *domain.Scene) (string, bool) {
	roots := scene.Roots()
	switch len(roots) {
	case 0:
		return "", false
	case 1:
		return roots[0], true
	}
	for _, id := range roots {
		if n, _ := scene.Node(id); n.Kind == domain.KindRoot {
			return id, true
		}
	}
	return roots[0], true
}
