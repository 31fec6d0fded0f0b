package convert

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
)

// SceneWriter is the subset of *domain.Scene mutated while building.
type SceneWriter interface {
	AddNode(n domain.SceneNode) error
	Connect(parent, child string) error
	BlockSignals() func()
	Notify()
}

// BuildSceneFromTree instantiates one scene node per tree node, depth-first in
// child order, and one edge per parent-child relation. Tree nodes without an ID
// receive a fresh one, written back to the tree so callers can correlate them.
// When arranger is non-nil it assigns positions before the scope closes.
//
// The scene is expected to be empty; existing nodes are left untouched but an
// ID collision is reported as an error. Trees with cycles are not supported.
func BuildSceneFromTree(tree *domain.AbstractTree, scene *domain.Scene, arranger ports.Arranger) error {
	if err := build(tree, scene); err != nil {
		return err
	}
	if arranger != nil {
		release := scene.BlockSignals()
		err := arranger.Arrange(scene, tree)
		release()
		if err != nil {
			return fmt.Errorf("arrange scene: %w", err)
		}
	}
	scene.Notify()
	return nil
}

func build(tree *domain.AbstractTree, w SceneWriter) error {
	if tree == nil || tree.Root == nil {
		return nil
	}
	release := w.BlockSignals()
	defer release()

	var add func(n *domain.TreeNode, parent string) error
	add = func(n *domain.TreeNode, parent string) error {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		err := w.AddNode(domain.SceneNode{
			ID:     n.ID,
			Kind:   n.Kind,
			Model:  n.Model,
			Name:   n.Name,
			Params: n.Params,
		})
		if err != nil {
			return fmt.Errorf("add node %s (%s): %w", n.ID, n.Model, err)
		}
		if parent != "" {
			if err := w.Connect(parent, n.ID); err != nil {
				return fmt.Errorf("connect %s -> %s: %w", parent, n.ID, err)
			}
		}
		for _, c := range n.Children {
			if err := add(c, n.ID); err != nil {
				return err
			}
		}
		return nil
	}
	return add(tree.Root, "")
}
