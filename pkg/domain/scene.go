package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Layout is the port drawing orientation of a scene. It is presentation
// metadata but is persisted in snapshots.
type Layout string

const (
	LayoutHorizontal Layout = "horizontal"
	LayoutVertical   Layout = "vertical"
)

// ParseLayout accepts "horizontal" or "vertical" in any case.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutHorizontal:
		return LayoutHorizontal, nil
	case LayoutVertical:
		return LayoutVertical, nil
	}
	return "", fmt.Errorf("unknown layout %q (want horizontal or vertical)", s)
}

// Toggle returns the other orientation.
func (l Layout) Toggle() Layout {
	if l == LayoutVertical {
		return LayoutHorizontal
	}
	return LayoutVertical
}

// Position is a 2D scene coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SceneNode is a positioned graphical node.
type SceneNode struct {
	ID     string   `json:"id"`
	Kind   Kind     `json:"kind"`
	Model  string   `json:"model"`
	Name   string   `json:"name,omitempty"`
	Params []Param  `json:"params,omitempty"`
	Pos    Position `json:"pos"`
}

func (n SceneNode) clone() SceneNode {
	n.Params = CloneParams(n.Params)
	return n
}

// Edge is a directed parent->child connection.
type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Scene is the live graph a user edits. It is not safe for concurrent use;
// callers serialize access the way an event loop would.
type Scene struct {
	nodes  map[string]*SceneNode
	order  []string
	out    map[string][]string
	in     map[string][]string
	layout Layout

	listeners map[int]func()
	nextSub   int
	blocked   int
}

// NewScene creates an empty scene with the given layout.
func NewScene(layout Layout) *Scene {
	if layout == "" {
		layout = LayoutHorizontal
	}
	return &Scene{
		nodes:     make(map[string]*SceneNode),
		out:       make(map[string][]string),
		in:        make(map[string][]string),
		layout:    layout,
		listeners: make(map[int]func()),
	}
}

// Subscribe registers a change listener and returns a function removing it.
func (s *Scene) Subscribe(fn func()) func() {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// BlockSignals suppresses change notifications until the returned release
// function is called. Scopes nest; release is idempotent.
//
//	release := scene.BlockSignals()
//	defer release()
func (s *Scene) BlockSignals() func() {
	s.blocked++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		s.blocked--
	}
}

// SignalsBlocked reports whether a BlockSignals scope is open.
func (s *Scene) SignalsBlocked() bool {
	return s.blocked > 0
}

// Notify delivers a change notification to every listener unless signals
// are blocked.
func (s *Scene) Notify() {
	if s.blocked > 0 {
		return
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn()
		}
	}
}

// Layout returns the port orientation.
func (s *Scene) Layout() Layout {
	return s.layout
}

// SetLayout changes the port orientation.
func (s *Scene) SetLayout(l Layout) {
	if s.layout == l {
		return
	}
	s.layout = l
	s.Notify()
}

// Len returns the number of nodes.
func (s *Scene) Len() int {
	return len(s.order)
}

// AddNode inserts a node. IDs must be unique and non-empty.
func (s *Scene) AddNode(n SceneNode) error {
	if n.ID == "" {
		return fmt.Errorf("scene node requires an id")
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("scene node %q already exists", n.ID)
	}
	if n.Model == "" {
		n.Model = n.Kind.String()
	}
	for _, p := range n.Params {
		if err := CheckParamName(n.Kind, p.Name); err != nil {
			return fmt.Errorf("scene node %q: %w", n.ID, err)
		}
	}
	cp := n.clone()
	s.nodes[n.ID] = &cp
	s.order = append(s.order, n.ID)
	s.Notify()
	return nil
}

// RemoveNode deletes a node together with its incident edges.
func (s *Scene) RemoveNode(id string) error {
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	for _, child := range s.out[id] {
		s.in[child] = without(s.in[child], id)
	}
	for _, parent := range s.in[id] {
		s.out[parent] = without(s.out[parent], id)
	}
	delete(s.out, id)
	delete(s.in, id)
	delete(s.nodes, id)
	s.order = without(s.order, id)
	s.Notify()
	return nil
}

// Connect adds a parent->child edge after the parent's existing edges.
func (s *Scene) Connect(parent, child string) error {
	if _, ok := s.nodes[parent]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, parent)
	}
	if _, ok := s.nodes[child]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, child)
	}
	if parent == child {
		return fmt.Errorf("cannot connect node %q to itself", parent)
	}
	for _, c := range s.out[parent] {
		if c == child {
			return fmt.Errorf("edge %s -> %s already exists", parent, child)
		}
	}
	s.out[parent] = append(s.out[parent], child)
	s.in[child] = append(s.in[child], parent)
	s.Notify()
	return nil
}

// Disconnect removes a parent->child edge.
func (s *Scene) Disconnect(parent, child string) error {
	found := false
	for _, c := range s.out[parent] {
		if c == child {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("edge %s -> %s does not exist", parent, child)
	}
	s.out[parent] = without(s.out[parent], child)
	s.in[child] = without(s.in[child], parent)
	s.Notify()
	return nil
}

// Move sets the position of a node.
func (s *Scene) Move(id string, pos Position) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if n.Pos == pos {
		return nil
	}
	n.Pos = pos
	s.Notify()
	return nil
}

// SetParam updates a parameter value, appending it when absent. Names
// rejected by CheckParamName return ErrInvalidParam.
func (s *Scene) SetParam(id, name, value string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if err := CheckParamName(n.Kind, name); err != nil {
		return err
	}
	for i := range n.Params {
		if n.Params[i].Name == name {
			if n.Params[i].Value == value {
				return nil
			}
			n.Params[i].Value = value
			s.Notify()
			return nil
		}
	}
	n.Params = append(n.Params, Param{Name: name, Value: value})
	s.Notify()
	return nil
}

// Rename sets the instance label of a node.
func (s *Scene) Rename(id, name string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if n.Name == name {
		return nil
	}
	n.Name = name
	s.Notify()
	return nil
}

// Clear removes all nodes and edges. The layout is kept.
func (s *Scene) Clear() {
	if len(s.order) == 0 {
		return
	}
	s.nodes = make(map[string]*SceneNode)
	s.out = make(map[string][]string)
	s.in = make(map[string][]string)
	s.order = nil
	s.Notify()
}

// Node returns a copy of the node with the given ID.
func (s *Scene) Node(id string) (SceneNode, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return SceneNode{}, false
	}
	return n.clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (s *Scene) Nodes() []SceneNode {
	out := make([]SceneNode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].clone())
	}
	return out
}

// Edges returns all edges grouped by parent in insertion order, each group
// in connection order.
func (s *Scene) Edges() []Edge {
	var edges []Edge
	for _, parent := range s.order {
		for _, child := range s.out[parent] {
			edges = append(edges, Edge{Parent: parent, Child: child})
		}
	}
	return edges
}

// Children returns the children of a node in drawing order: sorted along the
// cross axis of the layout (Y when horizontal, X when vertical), ties kept in
// connection order.
func (s *Scene) Children(id string) []string {
	children := append([]string(nil), s.out[id]...)
	sort.SliceStable(children, func(i, j int) bool {
		a, b := s.nodes[children[i]].Pos, s.nodes[children[j]].Pos
		if s.layout == LayoutVertical {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return children
}

// Parents returns the parents of a node in connection order.
func (s *Scene) Parents(id string) []string {
	return append([]string(nil), s.in[id]...)
}

// Roots returns the nodes with no incoming edge, in insertion order.
func (s *Scene) Roots() []string {
	var roots []string
	for _, id := range s.order {
		if len(s.in[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

func without(list []string, v string) []string {
	out := list[:0:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
