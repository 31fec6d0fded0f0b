package layout_test

import (
	"testing"

	"github.com/aretw0/arbor/internal/layout"
	"github.com/aretw0/arbor/pkg/convert"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTidy_PreservesSiblingOrder(t *testing.T) {
	for _, l := range []domain.Layout{domain.LayoutHorizontal, domain.LayoutVertical} {
		t.Run(string(l), func(t *testing.T) {
			a := &domain.TreeNode{ID: "a", Kind: domain.KindAction, Model: "A"}
			b := &domain.TreeNode{ID: "b", Kind: domain.KindAction, Model: "B"}
			c := &domain.TreeNode{ID: "c", Kind: domain.KindAction, Model: "C"}
			seq := &domain.TreeNode{ID: "seq", Kind: domain.KindSequence, Model: "Sequence", Children: []*domain.TreeNode{a, b, c}}
			tree := &domain.AbstractTree{Root: &domain.TreeNode{ID: "root", Kind: domain.KindRoot, Model: "Root", Children: []*domain.TreeNode{seq}}}

			scene := domain.NewScene(l)
			require.NoError(t, convert.BuildSceneFromTree(tree, scene, layout.NewTidy()))

			assert.Equal(t, []string{"a", "b", "c"}, scene.Children("seq"))

			root, _ := scene.Node("root")
			leaf, _ := scene.Node("c")
			if l == domain.LayoutVertical {
				assert.Less(t, root.Pos.Y, leaf.Pos.Y)
			} else {
				assert.Less(t, root.Pos.X, leaf.Pos.X)
			}
		})
	}
}

func TestTidy_CentersParents(t *testing.T) {
	a := &domain.TreeNode{ID: "a", Kind: domain.KindAction, Model: "A"}
	b := &domain.TreeNode{ID: "b", Kind: domain.KindAction, Model: "B"}
	seq := &domain.TreeNode{ID: "seq", Kind: domain.KindSequence, Model: "Sequence", Children: []*domain.TreeNode{a, b}}
	tree := &domain.AbstractTree{Root: seq}

	scene := domain.NewScene(domain.LayoutHorizontal)
	require.NoError(t, convert.BuildSceneFromTree(tree, scene, &layout.Tidy{LevelGap: 10, SiblingGap: 20}))

	n, _ := scene.Node("seq")
	assert.Equal(t, domain.Position{X: 0, Y: 10}, n.Pos)
	n, _ = scene.Node("b")
	assert.Equal(t, domain.Position{X: 10, Y: 20}, n.Pos)
}
