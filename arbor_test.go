package arbor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/config"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patrolXML = `<root>
    <BehaviorTree>
        <Sequence>
            <Action ID="ActionA" speed="3"/>
            <Action ID="ActionB"/>
        </Sequence>
    </BehaviorTree>
    <TreeNodesModel>
        <Action ID="ActionA"><Parameter label="speed" type="Int"/></Action>
        <Action ID="ActionB"/>
    </TreeNodesModel>
</root>`

const guardXML = `<root>
    <BehaviorTree>
        <Fallback>
            <ActionB/>
        </Fallback>
    </BehaviorTree>
</root>`

func newEditor(t *testing.T, opts ...arbor.Option) *arbor.Editor {
	t.Helper()
	ed, err := arbor.New(opts...)
	require.NoError(t, err)
	return ed
}

func TestEditor_LoadSaveRoundTrip(t *testing.T) {
	ed := newEditor(t)
	require.NoError(t, ed.LoadXML([]byte(patrolXML)))

	st := ed.Status()
	assert.Equal(t, arbor.DefaultTab, st.Tab)
	assert.True(t, st.Valid)
	assert.Equal(t, 4, st.Nodes)
	assert.Equal(t, 1, st.UndoDepth, "a load is one undoable step")
	assert.True(t, st.Dirty)

	_, ok := ed.Registry().Lookup("ActionA")
	assert.True(t, ok, "document models are registered")

	out, err := ed.SaveXML()
	require.NoError(t, err)
	assert.False(t, ed.Status().Dirty)
	xml := string(out)
	assert.Less(t, strings.Index(xml, `ID="ActionA"`), strings.Index(xml, `ID="ActionB"`))

	other := newEditor(t)
	require.NoError(t, other.LoadXML(out))
	assert.True(t, ed.Tree().Equivalent(other.Tree()))
}

func TestEditor_FailedLoadLeavesSceneAndStacks(t *testing.T) {
	ed := newEditor(t)
	require.NoError(t, ed.LoadXML([]byte(patrolXML)))
	require.NoError(t, ed.Edit(func(s *domain.Scene) error {
		return s.Rename(s.Roots()[0], "renamed")
	}))
	require.NoError(t, ed.Undo())

	before := ed.Status()
	tree := ed.Tree()

	t.Run("Two Top Level Nodes", func(t *testing.T) {
		err := ed.LoadXML([]byte(`<root><BehaviorTree>
			<Sequence><ActionA/></Sequence>
			<Sequence><ActionB/></Sequence>
		</BehaviorTree></root>`))
		var shape *domain.ShapeError
		assert.True(t, errors.As(err, &shape))
	})

	t.Run("Malformed", func(t *testing.T) {
		var perr *domain.ParseError
		assert.True(t, errors.As(ed.LoadXML([]byte("<root><BehaviorTree>")), &perr))
	})

	t.Run("Unknown Model Rolls Back", func(t *testing.T) {
		err := ed.LoadXML([]byte(`<root><BehaviorTree><Action ID="Teleport"/></BehaviorTree></root>`))
		assert.ErrorIs(t, err, domain.ErrUnknownModel)
	})

	after := ed.Status()
	assert.Equal(t, before.UndoDepth, after.UndoDepth)
	assert.Equal(t, before.RedoDepth, after.RedoDepth)
	assert.Equal(t, before.Nodes, after.Nodes)
	assert.True(t, tree.Equivalent(ed.Tree()))
	_, ok := ed.Registry().Lookup("Teleport")
	assert.False(t, ok)
}

func TestEditor_SaveRefusesMalformed(t *testing.T) {
	ed := newEditor(t)
	_, err := ed.SaveXML()
	var shape *domain.ShapeError
	require.True(t, errors.As(err, &shape))
	assert.Contains(t, err.Error(), "there must be only 1 root node")

	require.NoError(t, ed.Edit(func(s *domain.Scene) error {
		if err := s.AddNode(domain.SceneNode{ID: "r1", Kind: domain.KindRoot}); err != nil {
			return err
		}
		return s.AddNode(domain.SceneNode{ID: "r2", Kind: domain.KindRoot})
	}))
	_, err = ed.SaveXML()
	assert.True(t, errors.As(err, &shape))
	assert.Equal(t, 2, shape.Roots)
	assert.False(t, ed.Status().Valid)
}

func TestEditor_Modes(t *testing.T) {
	ed := newEditor(t, arbor.WithMode(domain.ModeMonitor))
	assert.ErrorIs(t, ed.LoadXML([]byte(patrolXML)), domain.ErrLocked)
	assert.ErrorIs(t, ed.Clear(), domain.ErrLocked)
	assert.ErrorIs(t, ed.AutoArrange(), domain.ErrLocked)
	assert.ErrorIs(t, ed.Edit(func(*domain.Scene) error { return nil }), domain.ErrLocked)

	require.NoError(t, ed.FeedXML([]byte(patrolXML)))
	require.NoError(t, ed.FeedXML([]byte(guardXML)))
	st := ed.Status()
	assert.Equal(t, 3, st.Nodes)
	assert.Equal(t, 1, st.UndoDepth, "feeds reset the history to one baseline")
	assert.ErrorIs(t, ed.Undo(), domain.ErrLocked)

	ed.SetMode(domain.ModeEditor)
	require.NoError(t, ed.Undo())
	assert.Equal(t, 3, ed.Status().Nodes, "nothing to undo past the baseline")
	require.NoError(t, ed.Clear())
	assert.Zero(t, ed.Status().Nodes)
	require.NoError(t, ed.Undo())
	assert.Equal(t, 3, ed.Status().Nodes)
}

func TestEditor_LoadTree(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Model{ID: "Wave", Kind: domain.KindAction}))
	ed := newEditor(t, arbor.WithRegistry(reg), arbor.WithMode(domain.ModeReplay))

	tree := &domain.AbstractTree{Root: domain.NewTreeNode(domain.KindRoot, "",
		domain.NewTreeNode(domain.KindAction, "Wave"))}
	require.NoError(t, ed.LoadTree(tree))
	assert.True(t, ed.Status().Valid)
	assert.True(t, tree.Equivalent(ed.Tree()))

	bad := &domain.AbstractTree{Root: domain.NewTreeNode(domain.KindRoot, "",
		domain.NewTreeNode(domain.KindAction, "Missing"))}
	assert.ErrorIs(t, ed.LoadTree(bad), domain.ErrUnknownModel)
	assert.True(t, tree.Equivalent(ed.Tree()))
}

func TestEditor_Layout(t *testing.T) {
	ed := newEditor(t)
	require.NoError(t, ed.LoadXML([]byte(patrolXML)))
	require.NoError(t, ed.NewTab("second"))
	require.NoError(t, ed.LoadXML([]byte(guardXML)))
	assert.Equal(t, []string{arbor.DefaultTab, "second"}, ed.Tabs())

	refreshed, err := ed.ToggleLayout()
	require.NoError(t, err)
	assert.Equal(t, []string{arbor.DefaultTab, "second"}, refreshed)
	assert.Equal(t, domain.LayoutVertical, ed.Status().Layout)
	assert.Equal(t, 2, ed.Status().UndoDepth)

	require.NoError(t, ed.SelectTab(arbor.DefaultTab))
	tree := ed.Tree()
	require.NoError(t, ed.AutoArrange())
	assert.True(t, tree.Equivalent(ed.Tree()))

	assert.ErrorIs(t, ed.NewTab("second"), domain.ErrDuplicateTab)
	require.NoError(t, ed.CloseTab("second"))
	assert.Error(t, ed.CloseTab(arbor.DefaultTab))
}

func TestEditor_Files(t *testing.T) {
	dir := t.TempDir()
	settings, err := config.LoadFrom(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, err)

	src := filepath.Join(dir, "in", "patrol.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte(patrolXML), 0o644))

	ed := newEditor(t, arbor.WithSettings(settings))
	require.NoError(t, ed.LoadFile(src))

	out, err := ed.SaveFile(filepath.Join(dir, "out", "copy"))
	assert.Error(t, err, "missing directory")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "out"), 0o755))
	out, err = ed.SaveFile(filepath.Join(dir, "out", "copy"))
	require.NoError(t, err)
	assert.Equal(t, ".xml", filepath.Ext(out))

	reloaded, err := config.LoadFrom(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "in"), reloaded.LastLoadDirectory)
	assert.Equal(t, filepath.Join(dir, "out"), reloaded.LastSaveDirectory)

	assert.Error(t, ed.LoadFile(filepath.Join(dir, "nope.xml")))
}

func TestEditor_Store(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, newEditor(t).Save(ctx, "x"), arbor.ErrNoStore)

	var loads, saves []string
	store := memory.NewStore()
	ed := newEditor(t, arbor.WithStore(store), arbor.WithHooks(domain.LifecycleHooks{
		OnLoad: func(_ context.Context, name string, err error) {
			if err == nil {
				loads = append(loads, name)
			}
		},
		OnSave: func(_ context.Context, name string, err error) {
			if err == nil {
				saves = append(saves, name)
			}
		},
	}))
	require.NoError(t, ed.LoadXML([]byte(patrolXML)))
	require.NoError(t, ed.Save(ctx, "patrol"))

	fresh := newEditor(t, arbor.WithStore(store))
	require.NoError(t, fresh.Load(ctx, "patrol"))
	assert.True(t, ed.Tree().Equivalent(fresh.Tree()))
	assert.ErrorIs(t, fresh.Load(ctx, "missing"), domain.ErrDocumentNotFound)

	assert.Equal(t, []string{""}, loads)
	assert.Equal(t, []string{"patrol"}, saves)
}

func TestEditor_SavedParamsReadBack(t *testing.T) {
	ed := newEditor(t)
	require.NoError(t, ed.LoadXML([]byte(patrolXML)))

	var actionB string
	ed.View(func(s *domain.Scene) {
		for _, n := range s.Nodes() {
			if n.Model == "ActionB" {
				actionB = n.ID
			}
		}
	})
	require.NotEmpty(t, actionB)

	err := ed.Edit(func(s *domain.Scene) error { return s.SetParam(actionB, "ID", "Hijack") })
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
	err = ed.Edit(func(s *domain.Scene) error { return s.SetParam(actionB, "bad key", "v") })
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
	require.NoError(t, ed.Edit(func(s *domain.Scene) error { return s.SetParam(actionB, "retries", "2") }))

	out, err := ed.SaveXML()
	require.NoError(t, err)

	again := newEditor(t)
	require.NoError(t, again.LoadXML(out))
	assert.True(t, ed.Tree().Equivalent(again.Tree()))
	assert.Contains(t, string(out), `<Action ID="ActionB" retries="2">`)
}
