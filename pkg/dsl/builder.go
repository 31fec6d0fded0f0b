package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// Builder manages the tree construction.
type Builder struct {
	entry *NodeBuilder
}

// New creates a tree whose Root holds entry.
func New(entry *NodeBuilder) *Builder {
	return &Builder{entry: entry}
}

// Build checks the structure and returns the tree rooted at an implicit
// Root node.
func (b *Builder) Build() (*domain.AbstractTree, error) {
	if b.entry == nil {
		return nil, errors.New("tree has no entry node")
	}
	root := domain.NewTreeNode(domain.KindRoot, "", b.entry.Build())
	tree := &domain.AbstractTree{Root: root}

	var err error
	tree.Walk(func(n *domain.TreeNode, depth int) bool {
		if err != nil {
			return false
		}
		if depth > 0 && n.Kind == domain.KindRoot {
			err = errors.New("Root cannot appear inside a tree")
			return false
		}
		err = checkNode(n)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func checkNode(n *domain.TreeNode) error {
	if n.Kind.NeedsModel() && n.Model == "" {
		return fmt.Errorf("%s without model", n.Kind)
	}
	for _, p := range n.Params {
		if err := domain.CheckParamName(n.Kind, p.Name); err != nil {
			return fmt.Errorf("%s %q: %w", n.Kind, n.Model, err)
		}
	}
	if n.Kind == domain.KindDecorator && len(n.Children) != 1 {
		return fmt.Errorf("decorator %q must have exactly 1 child, found %d", n.Model, len(n.Children))
	}
	if limit := n.Kind.MaxChildren(); limit >= 0 && len(n.Children) > limit {
		return fmt.Errorf("%s %q cannot have children", n.Kind, n.Model)
	}
	return nil
}

// Models infers the model declarations used by the tree: one per custom
// model ID, with its parameters typed as Text in first-seen order.
func (b *Builder) Models() []registry.Model {
	if b.entry == nil {
		return nil
	}
	var order []string
	byID := make(map[string]*registry.Model)
	var visit func(n *NodeBuilder)
	visit = func(n *NodeBuilder) {
		if n.node.Kind.NeedsModel() {
			m, ok := byID[n.node.Model]
			if !ok {
				m = &registry.Model{ID: n.node.Model, Kind: n.node.Kind}
				byID[m.ID] = m
				order = append(order, m.ID)
			}
			for _, p := range n.node.Params {
				if !hasParam(m.Params, p.Name) {
					m.Params = append(m.Params, registry.ParamSpec{Name: p.Name, Type: domain.ParamText})
				}
			}
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(b.entry)

	out := make([]registry.Model, len(order))
	for i, id := range order {
		out[i] = *byID[id]
	}
	return out
}

// Register declares the tree's models in reg. Models already registered
// with the same kind are left as they are.
func (b *Builder) Register(reg *registry.Registry) error {
	for _, m := range b.Models() {
		if existing, ok := reg.Lookup(m.ID); ok {
			if existing.Kind != m.Kind {
				return fmt.Errorf("model %q already registered as %s", m.ID, existing.Kind)
			}
			continue
		}
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func hasParam(specs []registry.ParamSpec, name string) bool {
	for _, s := range specs {
		if s.Name == name {
			return true
		}
	}
	return false
}
