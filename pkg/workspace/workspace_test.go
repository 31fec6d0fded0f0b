package workspace_test

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/convert"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, tab *workspace.Tab) {
	t.Helper()
	tree := &domain.AbstractTree{Root: domain.NewTreeNode(domain.KindRoot, "",
		domain.NewTreeNode(domain.KindSequence, "",
			domain.NewTreeNode(domain.KindAction, "A"),
			domain.NewTreeNode(domain.KindAction, "B"),
		))}
	require.NoError(t, convert.BuildSceneFromTree(tree, tab.Scene, nil))
}

func TestWorkspace_Tabs(t *testing.T) {
	w := workspace.New()
	assert.Nil(t, w.Current())

	first, err := w.CreateTab("Behaviortree")
	require.NoError(t, err)
	_, err = w.CreateTab("second")
	require.NoError(t, err)

	_, err = w.CreateTab("Behaviortree")
	assert.ErrorIs(t, err, domain.ErrDuplicateTab)

	assert.Same(t, first, w.Current())
	require.NoError(t, w.Select("second"))
	assert.Equal(t, "second", w.Current().Name)
	assert.ErrorIs(t, w.Select("missing"), domain.ErrTabNotFound)

	names := []string{}
	for _, tab := range w.Tabs() {
		names = append(names, tab.Name)
	}
	assert.Equal(t, []string{"Behaviortree", "second"}, names)

	require.NoError(t, w.CloseTab("second"))
	assert.Equal(t, "Behaviortree", w.Current().Name)
	_, err = w.Tab("second")
	assert.ErrorIs(t, err, domain.ErrTabNotFound)
	assert.ErrorIs(t, w.CloseTab("second"), domain.ErrTabNotFound)
}

func TestWorkspace_ModeLocksHistory(t *testing.T) {
	w := workspace.New()
	tab, err := w.CreateTab("main")
	require.NoError(t, err)
	fill(t, tab)
	require.Equal(t, 1, tab.History.UndoDepth())

	w.SetMode(domain.ModeMonitor)
	assert.True(t, w.Locked())
	assert.ErrorIs(t, tab.History.Undo(), domain.ErrLocked)

	w.SetMode(domain.ModeEditor)
	assert.False(t, w.Locked())
	assert.NoError(t, tab.History.Undo())
	assert.Zero(t, tab.Scene.Len())
}

func TestWorkspace_SetLayout(t *testing.T) {
	w := workspace.New(workspace.WithLayout(domain.LayoutHorizontal))
	a, err := w.CreateTab("a")
	require.NoError(t, err)
	b, err := w.CreateTab("b")
	require.NoError(t, err)
	fill(t, a)
	fill(t, b)
	b.Scene.SetLayout(domain.LayoutVertical)
	before := a.Tree()
	depthA, depthB := a.History.UndoDepth(), b.History.UndoDepth()

	refreshed, err := w.SetLayout(domain.LayoutVertical)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, refreshed)
	assert.Equal(t, domain.LayoutVertical, w.Layout())
	assert.Equal(t, domain.LayoutVertical, a.Scene.Layout())
	assert.Equal(t, depthA+1, a.History.UndoDepth())
	assert.Equal(t, depthB, b.History.UndoDepth())
	assert.True(t, before.Equivalent(a.Tree()))

	refreshed, err = w.SetLayout(domain.LayoutVertical)
	require.NoError(t, err)
	assert.Empty(t, refreshed)

	require.NoError(t, a.History.Undo())
	assert.Equal(t, domain.LayoutHorizontal, a.Scene.Layout())
}

type brokenArranger struct{}

func (brokenArranger) Arrange(*domain.Scene, *domain.AbstractTree) error {
	return errors.New("no room")
}

func TestWorkspace_SetLayoutRollsBack(t *testing.T) {
	w := workspace.New(workspace.WithArranger(brokenArranger{}))
	tab, err := w.CreateTab("main")
	require.NoError(t, err)
	fill(t, tab)
	depth := tab.History.UndoDepth()

	_, err = w.SetLayout(domain.LayoutVertical)
	assert.Error(t, err)
	assert.Equal(t, domain.LayoutHorizontal, tab.Scene.Layout())
	assert.Equal(t, depth, tab.History.UndoDepth())
	assert.Equal(t, domain.LayoutHorizontal, w.Layout())
}
