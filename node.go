package arbor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/google/uuid"
)

// NodeSpec describes a node to add to the current tab.
type NodeSpec struct {
	// Model is the registered model ID. When empty, Kind names a built-in.
	Model string
	Kind  domain.Kind
	// ID is generated when empty.
	ID   string
	Name string
	// Parent, when set, receives the node as its last connected child.
	Parent string
	Pos    domain.Position
	// Params holds values for the model's declared parameters.
	Params map[string]string
}

// AddNode adds a node built from spec and returns its ID. The node and its
// parent edge are recorded as a single undo step.
func (e *Editor) AddNode(spec NodeSpec) (string, error) {
	node, err := e.newNode(spec)
	if err != nil {
		return "", err
	}
	err = e.Edit(func(scene *domain.Scene) error {
		if spec.Parent != "" {
			if _, ok := scene.Node(spec.Parent); !ok {
				return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, spec.Parent)
			}
		}
		release := scene.BlockSignals()
		err := scene.AddNode(node)
		if err == nil && spec.Parent != "" {
			if err = scene.Connect(spec.Parent, node.ID); err != nil {
				_ = scene.RemoveNode(node.ID)
			}
		}
		release()
		if err != nil {
			return err
		}
		scene.Notify()
		return nil
	})
	if err != nil {
		return "", err
	}
	return node.ID, nil
}

// newNode resolves the model of spec. Declared parameters are filled in
// declaration order; undeclared ones are rejected.
func (e *Editor) newNode(spec NodeSpec) (domain.SceneNode, error) {
	model := spec.Model
	if model == "" {
		if spec.Kind == domain.KindUndefined {
			return domain.SceneNode{}, errors.New("model or kind is required")
		}
		model = spec.Kind.String()
	}
	m, ok := e.reg.Lookup(model)
	if !ok {
		return domain.SceneNode{}, fmt.Errorf("%w: %q", domain.ErrUnknownModel, model)
	}
	if spec.Kind != domain.KindUndefined && spec.Kind != m.Kind {
		return domain.SceneNode{}, fmt.Errorf("model %q is a %s, not a %s", model, m.Kind, spec.Kind)
	}

	var params []domain.Param
	declared := make(map[string]bool, len(m.Params))
	for _, p := range m.Params {
		declared[p.Name] = true
		params = append(params, domain.Param{Name: p.Name, Value: spec.Params[p.Name]})
	}
	var extra []string
	for name := range spec.Params {
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return domain.SceneNode{}, fmt.Errorf("model %q has no parameters %s", model, strings.Join(extra, ", "))
	}

	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	return domain.SceneNode{
		ID:     id,
		Kind:   m.Kind,
		Model:  m.ID,
		Name:   spec.Name,
		Params: params,
		Pos:    spec.Pos,
	}, nil
}
