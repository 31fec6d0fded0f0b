package validator

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScene(t *testing.T, nodes map[string]domain.Kind, edges ...[2]string) *domain.Scene {
	t.Helper()
	s := domain.NewScene(domain.LayoutHorizontal)
	for _, id := range []string{"root", "seq", "a", "b", "c"} {
		if k, ok := nodes[id]; ok {
			require.NoError(t, s.AddNode(domain.SceneNode{ID: id, Kind: k}))
		}
	}
	for _, e := range edges {
		require.NoError(t, s.Connect(e[0], e[1]))
	}
	return s
}

func TestCheck(t *testing.T) {
	all := map[string]domain.Kind{
		"root": domain.KindRoot,
		"seq":  domain.KindSequence,
		"a":    domain.KindAction,
		"b":    domain.KindAction,
	}

	tests := []struct {
		name    string
		scene   *domain.Scene
		roots   int
		wantErr bool
	}{
		{
			name:  "Valid",
			scene: newScene(t, all, [2]string{"root", "seq"}, [2]string{"seq", "a"}, [2]string{"seq", "b"}),
		},
		{
			name:    "Empty",
			scene:   domain.NewScene(""),
			roots:   0,
			wantErr: true,
		},
		{
			name:    "Two Roots",
			scene:   newScene(t, all, [2]string{"root", "seq"}, [2]string{"seq", "a"}),
			roots:   2,
			wantErr: true,
		},
		{
			name:    "Root Without Child",
			scene:   newScene(t, map[string]domain.Kind{"root": domain.KindRoot}),
			roots:   1,
			wantErr: true,
		},
		{
			name:    "Root With Two Children",
			scene:   newScene(t, all, [2]string{"root", "seq"}, [2]string{"root", "a"}, [2]string{"root", "b"}),
			roots:   1,
			wantErr: true,
		},
		{
			name:    "Top Node Not Root",
			scene:   newScene(t, map[string]domain.Kind{"seq": domain.KindSequence, "a": domain.KindAction}, [2]string{"seq", "a"}),
			roots:   1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.scene)
			assert.Equal(t, !tt.wantErr, IsValid(tt.scene))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var shape *domain.ShapeError
			require.True(t, errors.As(err, &shape))
			assert.Equal(t, tt.roots, shape.Roots)
			assert.Contains(t, err.Error(), "malformed behavior tree")
		})
	}
}

func TestIsValid_DoesNotNotify(t *testing.T) {
	s := newScene(t, map[string]domain.Kind{"root": domain.KindRoot, "a": domain.KindAction}, [2]string{"root", "a"})
	calls := 0
	s.Subscribe(func() { calls++ })

	assert.True(t, IsValid(s))
	assert.Zero(t, calls)
}

func TestDiagnose(t *testing.T) {
	t.Run("Clean", func(t *testing.T) {
		s := newScene(t, map[string]domain.Kind{
			"root": domain.KindRoot, "seq": domain.KindSequence, "a": domain.KindAction,
		}, [2]string{"root", "seq"}, [2]string{"seq", "a"})
		assert.Empty(t, Diagnose(s))
	})

	t.Run("Findings", func(t *testing.T) {
		s := newScene(t, map[string]domain.Kind{
			"root": domain.KindRoot,
			"seq":  domain.KindSequence,
			"a":    domain.KindAction,
			"b":    domain.KindSequence,
			"c":    domain.KindSequence,
		},
			[2]string{"root", "seq"},
			[2]string{"seq", "a"},
			[2]string{"a", "seq"},
			[2]string{"b", "c"},
			[2]string{"c", "b"},
		)

		codes := map[IssueCode]Issue{}
		for _, issue := range Diagnose(s) {
			codes[issue.Code] = issue
		}

		assert.Contains(t, codes, IssueCycle)
		assert.Contains(t, codes, IssueMultipleParent)
		assert.Equal(t, []string{"seq"}, codes[IssueMultipleParent].Nodes)
		assert.Contains(t, codes, IssueTooManyChild, "action a has a child")
		require.Contains(t, codes, IssueUnreachable)
		assert.ElementsMatch(t, []string{"b", "c"}, codes[IssueUnreachable].Nodes)
		assert.NotContains(t, codes, IssueShape)
	})

	t.Run("Empty Control", func(t *testing.T) {
		s := newScene(t, map[string]domain.Kind{"root": domain.KindRoot, "seq": domain.KindSequence}, [2]string{"root", "seq"})
		issues := Diagnose(s)
		require.Len(t, issues, 1)
		assert.Equal(t, IssueEmptyControl, issues[0].Code)
	})
}

func TestDiagnoseParams(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Model{
		ID:     "MoveTo",
		Kind:   domain.KindAction,
		Params: []registry.ParamSpec{{Name: "speed", Type: domain.ParamDouble}},
	}))

	s := domain.NewScene(domain.LayoutHorizontal)
	require.NoError(t, s.AddNode(domain.SceneNode{ID: "ok", Kind: domain.KindAction, Model: "MoveTo",
		Params: []domain.Param{{Name: "speed", Value: "{cruise}"}}}))
	require.NoError(t, s.AddNode(domain.SceneNode{ID: "bad", Kind: domain.KindAction, Model: "MoveTo",
		Params: []domain.Param{{Name: "speed", Value: "fast"}}}))
	require.NoError(t, s.AddNode(domain.SceneNode{ID: "unknown", Kind: domain.KindAction, Model: "Ghost",
		Params: []domain.Param{{Name: "x", Value: "y"}}}))

	issues := DiagnoseParams(s, reg)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueParam, issues[0].Code)
	assert.Equal(t, []string{"bad"}, issues[0].Nodes)
	assert.Contains(t, issues[0].Message, "expected a number")
}
