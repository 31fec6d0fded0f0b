package snapshot_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScene(t *testing.T) *domain.Scene {
	t.Helper()
	s := domain.NewScene(domain.LayoutVertical)
	require.NoError(t, s.AddNode(domain.SceneNode{ID: "root", Kind: domain.KindRoot}))
	require.NoError(t, s.AddNode(domain.SceneNode{ID: "seq", Kind: domain.KindSequence, Pos: domain.Position{X: 0, Y: 200}}))
	require.NoError(t, s.AddNode(domain.SceneNode{ID: "a", Kind: domain.KindAction, Model: "OpenDoor",
		Params: []domain.Param{{Name: "door", Value: "front"}}, Pos: domain.Position{X: 0, Y: 400}}))
	require.NoError(t, s.AddNode(domain.SceneNode{ID: "b", Kind: domain.KindAction, Model: "Wave", Name: "greet",
		Pos: domain.Position{X: 0, Y: 400}}))
	require.NoError(t, s.Connect("root", "seq"))
	require.NoError(t, s.Connect("seq", "a"))
	require.NoError(t, s.Connect("seq", "b"))
	return s
}

func TestCodec_RoundTrip(t *testing.T) {
	for name, codec := range map[string]*snapshot.Codec{
		"LZ4": snapshot.New(),
		"Raw": snapshot.New(snapshot.WithCompression(false)),
	} {
		t.Run(name, func(t *testing.T) {
			scene := buildScene(t)
			snap, err := codec.Encode(scene)
			require.NoError(t, err)

			decoded, err := codec.Decode(snap)
			require.NoError(t, err)
			assert.Equal(t, scene.Layout(), decoded.Layout())
			assert.Equal(t, scene.Nodes(), decoded.Nodes())
			assert.Equal(t, scene.Edges(), decoded.Edges())
			assert.Equal(t, []string{"a", "b"}, decoded.Children("seq"), "ties keep connection order")

			again, err := codec.Encode(decoded)
			require.NoError(t, err)
			assert.True(t, snap.Equal(again))
		})
	}
}

func TestCodec_EqualityTracksContent(t *testing.T) {
	codec := snapshot.New()
	scene := buildScene(t)
	before, err := codec.Encode(scene)
	require.NoError(t, err)

	require.NoError(t, scene.Move("a", domain.Position{X: 5, Y: 400}))
	moved, err := codec.Encode(scene)
	require.NoError(t, err)
	assert.False(t, before.Equal(moved))

	require.NoError(t, scene.Move("a", domain.Position{X: 0, Y: 400}))
	back, err := codec.Encode(scene)
	require.NoError(t, err)
	assert.True(t, before.Equal(back))

	scene.SetLayout(domain.LayoutHorizontal)
	relaid, err := codec.Encode(scene)
	require.NoError(t, err)
	assert.False(t, before.Equal(relaid))
}

func TestCodec_EmptyScene(t *testing.T) {
	codec := snapshot.New()
	snap, err := codec.Encode(domain.NewScene(""))
	require.NoError(t, err)

	decoded, err := codec.Decode(snap)
	require.NoError(t, err)
	assert.Zero(t, decoded.Len())
	assert.Equal(t, domain.LayoutHorizontal, decoded.Layout())
}

func TestCodec_Restore(t *testing.T) {
	codec := snapshot.New()
	source := buildScene(t)
	snap, err := codec.Encode(source)
	require.NoError(t, err)

	target := domain.NewScene(domain.LayoutHorizontal)
	require.NoError(t, target.AddNode(domain.SceneNode{ID: "other", Kind: domain.KindAction, Model: "X"}))
	calls := 0
	target.Subscribe(func() { calls++ })

	require.NoError(t, codec.Restore(snap, target))
	assert.Equal(t, 1, calls)
	assert.Equal(t, source.Nodes(), target.Nodes())
	assert.Equal(t, domain.LayoutVertical, target.Layout())
}

func TestCodec_RestoreCorruptLeavesScene(t *testing.T) {
	codec := snapshot.New()
	target := buildScene(t)
	before, err := codec.Encode(target)
	require.NoError(t, err)

	for _, bad := range []domain.Snapshot{
		nil,
		domain.Snapshot("ARB1{not json"),
		domain.Snapshot("XXXXpayload"),
		domain.Snapshot(`ARB1{"nodes":[{"id":"a","kind":"Action"},{"id":"a","kind":"Action"}],"edges":[]}`),
		domain.Snapshot(`ARB1{"nodes":[],"edges":[{"parent":"x","child":"y"}]}`),
	} {
		err := codec.Restore(bad, target)
		assert.ErrorIs(t, err, snapshot.ErrCorrupt)
	}

	after, err := codec.Encode(target)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}
