package convert_test

import (
	"testing"

	"github.com/aretw0/arbor/internal/layout"
	"github.com/aretw0/arbor/pkg/convert"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *domain.AbstractTree {
	a := &domain.TreeNode{ID: "a", Kind: domain.KindAction, Model: "ActionA",
		Params: []domain.Param{{Name: "speed", Value: "3"}, {Name: "target", Value: "door"}}}
	b := &domain.TreeNode{ID: "b", Kind: domain.KindAction, Model: "ActionB", Name: "second"}
	seq := &domain.TreeNode{ID: "seq", Kind: domain.KindSequence, Model: "Sequence", Children: []*domain.TreeNode{a, b}}
	return &domain.AbstractTree{Root: &domain.TreeNode{ID: "root", Kind: domain.KindRoot, Model: "Root", Children: []*domain.TreeNode{seq}}}
}

func TestBuildSceneFromTree_SingleNotification(t *testing.T) {
	scene := domain.NewScene(domain.LayoutHorizontal)
	calls := 0
	scene.Subscribe(func() { calls++ })

	require.NoError(t, convert.BuildSceneFromTree(sampleTree(), scene, layout.NewTidy()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, scene.Len())
	assert.Equal(t, []string{"root"}, scene.Roots())
	assert.Equal(t, []string{"seq"}, scene.Children("root"))
	assert.Equal(t, []string{"a", "b"}, scene.Children("seq"))
	assert.False(t, scene.SignalsBlocked())
}

func TestRoundTrip_PreservesStructure(t *testing.T) {
	original := sampleTree()
	scene := domain.NewScene(domain.LayoutVertical)
	require.NoError(t, convert.BuildSceneFromTree(original, scene, layout.NewTidy()))

	got := convert.BuildTreeFromScene(scene)
	require.NotNil(t, got.Root)
	assert.True(t, original.Equivalent(got))
	assert.Equal(t, "root", got.Root.ID)
	assert.Equal(t, "a", got.Root.Children[0].Children[0].ID)
	assert.Equal(t, []domain.Param{{Name: "speed", Value: "3"}, {Name: "target", Value: "door"}},
		got.Root.Children[0].Children[0].Params)
	assert.Equal(t, "second", got.Root.Children[0].Children[1].Name)

	again := domain.NewScene(domain.LayoutVertical)
	require.NoError(t, convert.BuildSceneFromTree(got, again, layout.NewTidy()))
	assert.Equal(t, scene.Nodes(), again.Nodes())
	assert.Equal(t, scene.Edges(), again.Edges())
}

func TestBuildSceneFromTree_AssignsMissingIDs(t *testing.T) {
	tree := &domain.AbstractTree{Root: domain.NewTreeNode(domain.KindRoot, "",
		domain.NewTreeNode(domain.KindAction, "Wave"))}
	scene := domain.NewScene("")

	require.NoError(t, convert.BuildSceneFromTree(tree, scene, nil))

	require.NotEmpty(t, tree.Root.ID)
	require.NotEmpty(t, tree.Root.Children[0].ID)
	assert.NotEqual(t, tree.Root.ID, tree.Root.Children[0].ID)
	assert.Equal(t, []string{tree.Root.Children[0].ID}, scene.Children(tree.Root.ID))
}

func TestBuildSceneFromTree_DuplicateID(t *testing.T) {
	tree := &domain.AbstractTree{Root: &domain.TreeNode{ID: "x", Kind: domain.KindSequence, Model: "Sequence",
		Children: []*domain.TreeNode{{ID: "x", Kind: domain.KindAction, Model: "A"}}}}
	scene := domain.NewScene("")
	calls := 0
	scene.Subscribe(func() { calls++ })

	err := convert.BuildSceneFromTree(tree, scene, nil)
	assert.Error(t, err)
	assert.Zero(t, calls, "failed build must not notify")
	assert.False(t, scene.SignalsBlocked())
}

func TestBuildTreeFromScene_Partial(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		tree := convert.BuildTreeFromScene(domain.NewScene(""))
		assert.Nil(t, tree.Root)
		assert.Zero(t, tree.Len())
	})

	t.Run("Prefers Root Kind", func(t *testing.T) {
		scene := domain.NewScene("")
		require.NoError(t, scene.AddNode(domain.SceneNode{ID: "stray", Kind: domain.KindAction, Model: "A"}))
		require.NoError(t, scene.AddNode(domain.SceneNode{ID: "root", Kind: domain.KindRoot}))
		require.NoError(t, scene.AddNode(domain.SceneNode{ID: "seq", Kind: domain.KindSequence}))
		require.NoError(t, scene.Connect("root", "seq"))

		tree := convert.BuildTreeFromScene(scene)
		require.NotNil(t, tree.Root)
		assert.Equal(t, "root", tree.Root.ID)
		assert.Equal(t, 2, tree.Len())
	})

	t.Run("Shared Child Emitted Once", func(t *testing.T) {
		scene := domain.NewScene("")
		for _, id := range []string{"r", "p1", "p2", "leaf"} {
			require.NoError(t, scene.AddNode(domain.SceneNode{ID: id, Kind: domain.KindSequence}))
		}
		require.NoError(t, scene.Connect("r", "p1"))
		require.NoError(t, scene.Connect("r", "p2"))
		require.NoError(t, scene.Connect("p1", "leaf"))
		require.NoError(t, scene.Connect("p2", "leaf"))
		require.NoError(t, scene.Connect("leaf", "r"))

		tree := convert.BuildTreeFromScene(scene)
		assert.Nil(t, tree.Root, "a scene whose nodes all have parents has no root")

		require.NoError(t, scene.Disconnect("leaf", "r"))
		tree = convert.BuildTreeFromScene(scene)
		assert.Equal(t, 4, tree.Len())
	})
}

func TestBuildTreeFromScene_OrderFollowsPositions(t *testing.T) {
	scene := domain.NewScene(domain.LayoutHorizontal)
	require.NoError(t, scene.AddNode(domain.SceneNode{ID: "seq", Kind: domain.KindSequence}))
	require.NoError(t, scene.AddNode(domain.SceneNode{ID: "a", Kind: domain.KindAction, Model: "A", Pos: domain.Position{Y: 50}}))
	require.NoError(t, scene.AddNode(domain.SceneNode{ID: "b", Kind: domain.KindAction, Model: "B", Pos: domain.Position{Y: 10}}))
	require.NoError(t, scene.Connect("seq", "a"))
	require.NoError(t, scene.Connect("seq", "b"))

	tree := convert.BuildTreeFromScene(scene)
	require.Len(t, tree.Root.Children, 2)
	assert.Equal(t, "b", tree.Root.Children[0].ID)

	require.NoError(t, scene.Move("b", domain.Position{Y: 90}))
	tree = convert.BuildTreeFromScene(scene)
	assert.Equal(t, "a", tree.Root.Children[0].ID)
}
