package dsl

import "github.com/aretw0/arbor/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node     domain.TreeNode
	children []*NodeBuilder
}

func newNode(kind domain.Kind, model string, children []*NodeBuilder) *NodeBuilder {
	if model == "" {
		model = kind.String()
	}
	return &NodeBuilder{
		node:     domain.TreeNode{Kind: kind, Model: model},
		children: children,
	}
}

// Sequence ticks children in order until one fails.
func Sequence(children ...*NodeBuilder) *NodeBuilder {
	return newNode(domain.KindSequence, "", children)
}

// SequenceStar is a Sequence that resumes at the running child.
func SequenceStar(children ...*NodeBuilder) *NodeBuilder {
	return newNode(domain.KindSequenceStar, "", children)
}

// Fallback ticks children in order until one succeeds.
func Fallback(children ...*NodeBuilder) *NodeBuilder {
	return newNode(domain.KindFallback, "", children)
}

// Action is a leaf identified by a model ID.
func Action(model string) *NodeBuilder {
	return newNode(domain.KindAction, model, nil)
}

// Decorator wraps exactly one child.
func Decorator(model string, child *NodeBuilder) *NodeBuilder {
	var children []*NodeBuilder
	if child != nil {
		children = []*NodeBuilder{child}
	}
	return newNode(domain.KindDecorator, model, children)
}

// SubTree references another tree by model ID.
func SubTree(model string) *NodeBuilder {
	return newNode(domain.KindSubTree, model, nil)
}

// ID sets the instance ID. IDs are generated on load when left empty.
func (n *NodeBuilder) ID(id string) *NodeBuilder {
	n.node.ID = id
	return n
}

// Name sets the instance label.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.node.Name = name
	return n
}

// Param appends a parameter. Order is kept.
func (n *NodeBuilder) Param(name, value string) *NodeBuilder {
	n.node.Params = append(n.node.Params, domain.Param{Name: name, Value: value})
	return n
}

// Build returns a copy of the subtree rooted at n.
func (n *NodeBuilder) Build() *domain.TreeNode {
	out := n.node
	out.Params = domain.CloneParams(n.node.Params)
	out.Children = nil
	for _, c := range n.children {
		out.Children = append(out.Children, c.Build())
	}
	return &out
}
