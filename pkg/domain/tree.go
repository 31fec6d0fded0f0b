package domain

// TreeNode is a node of an AbstractTree.
type TreeNode struct {
	// ID is the unique instance identifier, shared with the scene node it maps to.
	ID string `json:"id"`
	// Kind selects the node behavior.
	Kind Kind `json:"kind"`
	// Model is the registry identifier (e.g. "OpenDoor"). For controls and the
	// root it equals the kind name.
	Model string `json:"model"`
	// Name is an optional instance label.
	Name string `json:"name,omitempty"`

	Params   []Param     `json:"params,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// NewTreeNode creates a node whose model defaults to the kind name.
func NewTreeNode(kind Kind, model string, children ...*TreeNode) *TreeNode {
	if model == "" {
		model = kind.String()
	}
	return &TreeNode{Kind: kind, Model: model, Children: children}
}

// AbstractTree is an ordered rooted tree, independent of any graphical layout.
type AbstractTree struct {
	Root *TreeNode `json:"root"`
}

// Walk visits every node depth-first, parents before children.
// Returning false from fn stops the descent below that node.
func (t *AbstractTree) Walk(fn func(n *TreeNode, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	var visit func(n *TreeNode, depth int)
	visit = func(n *TreeNode, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(t.Root, 0)
}

// Len returns the number of nodes in the tree.
func (t *AbstractTree) Len() int {
	count := 0
	t.Walk(func(*TreeNode, int) bool {
		count++
		return true
	})
	return count
}

// EntryPoint returns the single child of a Root node, or nil when the tree is
// not rooted at a Root with exactly one child.
func (t *AbstractTree) EntryPoint() *TreeNode {
	if t == nil || t.Root == nil || t.Root.Kind != KindRoot || len(t.Root.Children) != 1 {
		return nil
	}
	return t.Root.Children[0]
}

// Find returns the node with the given instance ID.
func (t *AbstractTree) Find(id string) *TreeNode {
	var found *TreeNode
	t.Walk(func(n *TreeNode, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Equivalent reports whether two trees have the same shape, kinds, models,
// names and parameters. Instance IDs are ignored.
func (t *AbstractTree) Equivalent(other *AbstractTree) bool {
	var a, b *TreeNode
	if t != nil {
		a = t.Root
	}
	if other != nil {
		b = other.Root
	}
	return nodesEquivalent(a, b)
}

func nodesEquivalent(a, b *TreeNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Model != b.Model || a.Name != b.Name {
		return false
	}
	if !ParamsEqual(a.Params, b.Params) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !nodesEquivalent(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
