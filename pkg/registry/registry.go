// Package registry holds the tree node model definitions (the TreeNodesModel).
package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// ParamSpec declares one parameter of a model.
type ParamSpec struct {
	Name string           `json:"label" yaml:"label" mapstructure:"label"`
	Type domain.ParamType `json:"type" yaml:"type" mapstructure:"type"`
}

// Model describes a registered node type.
type Model struct {
	ID     string      `json:"id" yaml:"id" mapstructure:"id"`
	Kind   domain.Kind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Params []ParamSpec `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

var builtins = []Model{
	{ID: "Root", Kind: domain.KindRoot},
	{ID: "Sequence", Kind: domain.KindSequence},
	{ID: "SequenceStar", Kind: domain.KindSequenceStar},
	{ID: "Fallback", Kind: domain.KindFallback},
}

// IsBuiltin reports whether the ID names one of the built-in models.
func IsBuiltin(id string) bool {
	for _, m := range builtins {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Registry maps model IDs to their descriptors.
// It is constructed once and passed to every component needing type lookup.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Model
	order  []string
}

// New creates a registry holding the built-in models.
func New() *Registry {
	r := &Registry{
		models: make(map[string]Model),
	}
	for _, m := range builtins {
		r.models[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r
}

// Register adds or replaces a model. Only Action, Decorator and SubTree
// models can be registered. Re-registering an ID with a different kind is
// rejected, as is overriding a built-in.
func (r *Registry) Register(m Model) error {
	if m.ID == "" {
		return fmt.Errorf("model requires an id")
	}
	if m.Kind == domain.KindUndefined {
		return fmt.Errorf("model %q requires a kind", m.ID)
	}
	if IsBuiltin(m.ID) {
		return fmt.Errorf("model %q is built in", m.ID)
	}
	if !m.Kind.NeedsModel() {
		return fmt.Errorf("model %q: custom %s models are not supported", m.ID, m.Kind)
	}
	for _, p := range m.Params {
		if err := domain.CheckParamName(m.Kind, p.Name); err != nil {
			return fmt.Errorf("model %q: %w", m.ID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.models[m.ID]; ok {
		if existing.Kind != m.Kind {
			return fmt.Errorf("model %q already registered as %s", m.ID, existing.Kind)
		}
	} else {
		r.order = append(r.order, m.ID)
	}
	m.Params = append([]ParamSpec(nil), m.Params...)
	r.models[m.ID] = m
	return nil
}

// Lookup returns the model registered under id.
func (r *Registry) Lookup(id string) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	if ok {
		m.Params = append([]ParamSpec(nil), m.Params...)
	}
	return m, ok
}

// Models returns all models in registration order, built-ins first.
func (r *Registry) Models() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Model, 0, len(r.order))
	for _, id := range r.order {
		m := r.models[id]
		m.Params = append([]ParamSpec(nil), m.Params...)
		out = append(out, m)
	}
	return out
}

// Custom returns the non built-in models in registration order.
func (r *Registry) Custom() []Model {
	var out []Model
	for _, m := range r.Models() {
		if !IsBuiltin(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// Merge registers every custom model of other into r.
func (r *Registry) Merge(other *Registry) error {
	for _, m := range other.Custom() {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
