package domain_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func sampleTree() *domain.AbstractTree {
	a := domain.NewTreeNode(domain.KindAction, "ActionA")
	a.Params = []domain.Param{{Name: "speed", Value: "2"}}
	b := domain.NewTreeNode(domain.KindAction, "ActionB")
	seq := domain.NewTreeNode(domain.KindSequence, "", a, b)
	return &domain.AbstractTree{Root: domain.NewTreeNode(domain.KindRoot, "", seq)}
}

func TestAbstractTree_EntryPointAndLen(t *testing.T) {
	tree := sampleTree()
	assert.Equal(t, 4, tree.Len())
	assert.Equal(t, domain.KindSequence, tree.EntryPoint().Kind)
	assert.Equal(t, "Sequence", tree.EntryPoint().Model)

	tree.Root.Children = append(tree.Root.Children, domain.NewTreeNode(domain.KindAction, "X"))
	assert.Nil(t, tree.EntryPoint())
}

func TestAbstractTree_Equivalent(t *testing.T) {
	a, b := sampleTree(), sampleTree()
	b.Root.Children[0].ID = "different-instance"
	assert.True(t, a.Equivalent(b))

	b.Root.Children[0].Children[0].Params[0].Value = "3"
	assert.False(t, a.Equivalent(b))

	c := sampleTree()
	kids := c.Root.Children[0].Children
	kids[0], kids[1] = kids[1], kids[0]
	assert.False(t, a.Equivalent(c), "child order matters")
}

func TestKind_ParseAndCategory(t *testing.T) {
	k, ok := domain.ParseKind("Subtree")
	assert.True(t, ok)
	assert.Equal(t, domain.KindSubTree, k)

	_, ok = domain.ParseKind("Parallel")
	assert.False(t, ok)

	assert.Equal(t, domain.CategoryControl, domain.KindSequenceStar.Category())
	assert.Equal(t, 1, domain.KindDecorator.MaxChildren())
	assert.Equal(t, -1, domain.KindFallback.MaxChildren())
	assert.Equal(t, 0, domain.KindAction.MaxChildren())
	assert.True(t, domain.KindAction.NeedsModel())
	assert.False(t, domain.KindSequence.NeedsModel())
	assert.Equal(t, domain.ParamUndefined, domain.ParseParamType("Float"))
}
