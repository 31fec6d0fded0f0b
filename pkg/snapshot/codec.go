// Package snapshot serializes scenes into opaque, comparable byte strings.
//
// Encoding is canonical: the same scene content always yields the same bytes,
// so snapshots can be compared with bytes.Equal. The payload is JSON framed
// with LZ4 unless compression is disabled.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/goccy/go-json"
	"github.com/pierrec/lz4"
)

var (
	magicRaw  = []byte("ARB1")
	magicLZ4  = []byte("ARZ1")
	magicSize = 4
)

// ErrCorrupt is returned when a snapshot cannot be decoded.
var ErrCorrupt = errors.New("corrupt snapshot")

type document struct {
	Layout domain.Layout      `json:"layout"`
	Nodes  []domain.SceneNode `json:"nodes"`
	Edges  []domain.Edge      `json:"edges"`
}

// Option configures a Codec.
type Option func(*Codec)

// WithCompression toggles LZ4 framing. Enabled by default.
func WithCompression(enabled bool) Option {
	return func(c *Codec) {
		c.compress = enabled
	}
}

// Codec converts between scenes and snapshots.
type Codec struct {
	compress bool
}

// New creates a codec.
func New(opts ...Option) *Codec {
	c := &Codec{compress: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode captures the full content of the scene: nodes in insertion order,
// edges in per-parent connection order, positions and layout.
func (c *Codec) Encode(scene *domain.Scene) (domain.Snapshot, error) {
	doc := document{
		Layout: scene.Layout(),
		Nodes:  scene.Nodes(),
		Edges:  scene.Edges(),
	}
	if doc.Nodes == nil {
		doc.Nodes = []domain.SceneNode{}
	}
	if doc.Edges == nil {
		doc.Edges = []domain.Edge{}
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	if !c.compress {
		return append(append([]byte{}, magicRaw...), payload...), nil
	}

	var buf bytes.Buffer
	buf.Write(magicLZ4)
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reconstructs a new scene from a snapshot. Either framing is
// accepted regardless of the codec's own compression setting.
func (c *Codec) Decode(snap domain.Snapshot) (*domain.Scene, error) {
	doc, err := c.parse(snap)
	if err != nil {
		return nil, err
	}
	scene := domain.NewScene(doc.Layout)
	if err := load(doc, scene); err != nil {
		return nil, err
	}
	return scene, nil
}

// Restore replaces the content of scene with the snapshot. The snapshot is
// fully validated first, so a corrupt one leaves the scene untouched. All
// mutations happen under one signal-blocked scope and listeners observe a
// single notification afterwards.
func (c *Codec) Restore(snap domain.Snapshot, scene *domain.Scene) error {
	doc, err := c.parse(snap)
	if err != nil {
		return err
	}
	if err := load(doc, domain.NewScene(doc.Layout)); err != nil {
		return err
	}

	release := scene.BlockSignals()
	scene.Clear()
	scene.SetLayout(doc.Layout)
	err = load(doc, scene)
	release()
	if err != nil {
		return err
	}
	scene.Notify()
	return nil
}

func (c *Codec) parse(snap domain.Snapshot) (*document, error) {
	if len(snap) < magicSize {
		return nil, fmt.Errorf("%w: too short", ErrCorrupt)
	}
	head, body := snap[:magicSize], snap[magicSize:]

	var payload []byte
	switch {
	case bytes.Equal(head, magicRaw):
		payload = body
	case bytes.Equal(head, magicLZ4):
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(body))); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		payload = buf.Bytes()
	default:
		return nil, fmt.Errorf("%w: unknown header %q", ErrCorrupt, head)
	}

	var doc document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Layout == "" {
		doc.Layout = domain.LayoutHorizontal
	}
	return &doc, nil
}

func load(doc *document, scene *domain.Scene) error {
	for _, n := range doc.Nodes {
		if err := scene.AddNode(n); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	for _, e := range doc.Edges {
		if err := scene.Connect(e.Parent, e.Child); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	return nil
}
