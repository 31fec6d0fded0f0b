package registry_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Builtins(t *testing.T) {
	r := registry.New()
	assert.Equal(t, 4, r.Len())

	m, ok := r.Lookup("SequenceStar")
	require.True(t, ok)
	assert.Equal(t, domain.KindSequenceStar, m.Kind)
	assert.Empty(t, r.Custom())

	err := r.Register(registry.Model{ID: "Sequence", Kind: domain.KindSequence})
	assert.Error(t, err, "built-ins cannot be overridden")
}

func TestRegistry_RegisterKeepsOrder(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(registry.Model{
		ID:   "MoveBase",
		Kind: domain.KindAction,
		Params: []registry.ParamSpec{
			{Name: "goal", Type: domain.ParamText},
			{Name: "timeout", Type: domain.ParamDouble},
		},
	}))
	require.NoError(t, r.Register(registry.Model{ID: "Retry", Kind: domain.KindDecorator}))

	custom := r.Custom()
	require.Len(t, custom, 2)
	assert.Equal(t, "MoveBase", custom[0].ID)
	assert.Equal(t, "timeout", custom[0].Params[1].Name)

	// Same kind replaces the definition without reordering.
	require.NoError(t, r.Register(registry.Model{ID: "MoveBase", Kind: domain.KindAction}))
	m, _ := r.Lookup("MoveBase")
	assert.Empty(t, m.Params)
	assert.Equal(t, "MoveBase", r.Custom()[0].ID)

	err := r.Register(registry.Model{ID: "MoveBase", Kind: domain.KindDecorator})
	assert.Error(t, err)
	assert.Error(t, r.Register(registry.Model{Kind: domain.KindAction}))
	assert.Error(t, r.Register(registry.Model{ID: "NoKind"}))
	assert.Error(t, r.Register(registry.Model{ID: "Parallel", Kind: domain.KindSequence}))
}

func TestRegistry_Merge(t *testing.T) {
	a := registry.New()
	b := registry.New()
	require.NoError(t, b.Register(registry.Model{ID: "Wait", Kind: domain.KindAction}))

	require.NoError(t, a.Merge(b))
	_, ok := a.Lookup("Wait")
	assert.True(t, ok)
	assert.True(t, registry.IsBuiltin("Root"))
	assert.False(t, registry.IsBuiltin("Wait"))
}
