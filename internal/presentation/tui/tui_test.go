package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutline(t *testing.T) {
	wag := domain.NewTreeNode(domain.KindAction, "Wag")
	wag.Name = "tail"
	wag.Params = []domain.Param{{Name: "speed", Value: "3"}}
	tree := &domain.AbstractTree{Root: domain.NewTreeNode(domain.KindRoot, "",
		domain.NewTreeNode(domain.KindFallback, "",
			wag,
			domain.NewTreeNode(domain.KindSubTree, "Nap"),
		),
	)}

	want := "# dog\n\n" +
		"- **Root**\n" +
		"  - **Fallback**\n" +
		"    - Action `Wag` _tail_ `speed=3`\n" +
		"    - SubTree `Nap`\n"
	assert.Equal(t, want, tui.Outline("dog", tree))
	assert.Equal(t, "# x\n\n_empty tree_\n", tui.Outline("x", &domain.AbstractTree{}))
}

func TestRenderer(t *testing.T) {
	render, err := tui.NewRenderer(60)
	require.NoError(t, err)
	out, err := render("# Title\n\n- item\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "item")
}

func TestBannerAndSemaphore(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_.__/")
	assert.Contains(t, tui.Semaphore(true, "valid"), "valid")
}
