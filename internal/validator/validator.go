// Package validator decides whether a scene holds a well-formed behavior tree.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

const shapeReason = "there must be only 1 root node"

// IsValid reports whether the scene has exactly one parentless node, that node
// is a Root, and it has exactly one child.
func IsValid(scene *domain.Scene) bool {
	return Check(scene) == nil
}

// Check returns nil for a valid scene, or a *domain.ShapeError describing why
// it is not.
func Check(scene *domain.Scene) error {
	roots := scene.Roots()
	if len(roots) != 1 {
		return &domain.ShapeError{
			Roots:        len(roots),
			RootChildren: -1,
			Reason:       fmt.Sprintf("%s, found %d", shapeReason, len(roots)),
		}
	}
	root, _ := scene.Node(roots[0])
	children := len(scene.Children(root.ID))
	if root.Kind != domain.KindRoot {
		return &domain.ShapeError{
			Roots:        1,
			RootChildren: children,
			Reason:       fmt.Sprintf("%s, top node %q is a %s", shapeReason, root.ID, root.Kind),
		}
	}
	if children != 1 {
		return &domain.ShapeError{
			Roots:        1,
			RootChildren: children,
			Reason:       fmt.Sprintf("%s with exactly 1 child, found %d", shapeReason, children),
		}
	}
	return nil
}

// IssueCode classifies a diagnostic.
type IssueCode string

const (
	IssueShape          IssueCode = "shape"
	IssueCycle          IssueCode = "cycle"
	IssueUnreachable    IssueCode = "unreachable"
	IssueMultipleParent IssueCode = "multiple-parents"
	IssueEmptyControl   IssueCode = "empty-control"
	IssueTooManyChild   IssueCode = "too-many-children"
	IssueParam          IssueCode = "param"
)

// Issue is an advisory finding about a scene.
type Issue struct {
	Code    IssueCode `json:"code"`
	Nodes   []string  `json:"nodes,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// Diagnose inspects the scene graph and reports every structural problem it
// finds. The findings are advisory; only Check gates persistence.
func Diagnose(scene *domain.Scene) []Issue {
	var issues []Issue
	if err := Check(scene); err != nil {
		issues = append(issues, Issue{Code: IssueShape, Message: err.Error()})
	}

	nodes := scene.Nodes()
	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(nodes))
	nodeToID := make(map[int64]string, len(nodes))
	for _, n := range nodes {
		gn := g.NewNode()
		g.AddNode(gn)
		idToNode[n.ID] = gn.ID()
		nodeToID[gn.ID()] = n.ID
	}
	for _, e := range scene.Edges() {
		g.SetEdge(g.NewEdge(g.Node(idToNode[e.Parent]), g.Node(idToNode[e.Child])))
	}

	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, nodeToID[n.ID()])
		}
		sort.Strings(ids)
		issues = append(issues, Issue{
			Code:    IssueCycle,
			Nodes:   ids,
			Message: "cycle between " + strings.Join(ids, ", "),
		})
	}

	if roots := scene.Roots(); len(roots) > 0 {
		var bf traverse.BreadthFirst
		bf.Walk(g, g.Node(idToNode[roots[0]]), nil)
		var lost []string
		for _, n := range nodes {
			if !bf.Visited(g.Node(idToNode[n.ID])) {
				lost = append(lost, n.ID)
			}
		}
		if len(lost) > 0 {
			issues = append(issues, Issue{
				Code:    IssueUnreachable,
				Nodes:   lost,
				Message: fmt.Sprintf("%d node(s) unreachable from %s", len(lost), roots[0]),
			})
		}
	}

	for _, n := range nodes {
		gid := idToNode[n.ID]
		if parents := g.To(gid).Len(); parents > 1 {
			issues = append(issues, Issue{
				Code:    IssueMultipleParent,
				Nodes:   []string{n.ID},
				Message: fmt.Sprintf("%s has %d parents", n.ID, parents),
			})
		}
		children := g.From(gid).Len()
		if n.Kind.Category() == domain.CategoryControl && children == 0 {
			issues = append(issues, Issue{
				Code:    IssueEmptyControl,
				Nodes:   []string{n.ID},
				Message: fmt.Sprintf("%s (%s) has no children", n.ID, n.Kind),
			})
		}
		if limit := n.Kind.MaxChildren(); limit >= 0 && children > limit {
			issues = append(issues, Issue{
				Code:    IssueTooManyChild,
				Nodes:   []string{n.ID},
				Message: fmt.Sprintf("%s (%s) has %d children, at most %d allowed", n.ID, n.Kind, children, limit),
			})
		}
	}
	return issues
}

// DiagnoseParams checks every node's parameters against the types its model
// declares in reg. Nodes whose model is not registered are skipped.
func DiagnoseParams(scene *domain.Scene, reg *registry.Registry) []Issue {
	var issues []Issue
	for _, n := range scene.Nodes() {
		if !n.Kind.NeedsModel() {
			continue
		}
		m, ok := reg.Lookup(n.Model)
		if !ok {
			continue
		}
		err := schema.Validate(schema.FromModel(m), n.Params)
		for _, e := range schema.ValidationErrors(err) {
			issues = append(issues, Issue{
				Code:    IssueParam,
				Nodes:   []string{n.ID},
				Message: fmt.Sprintf("%s (%s): %v", n.ID, n.Model, e),
			})
		}
	}
	return issues
}
