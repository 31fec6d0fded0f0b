package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// Arranger assigns positions to the nodes of a scene built from a tree.
// Layout algorithms live outside the core; the editor only needs positions
// that re-derive the tree's child order.
type Arranger interface {
	Arrange(scene *domain.Scene, tree *domain.AbstractTree) error
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is used by monitor mode to reload a tree when its document changes.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying document changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
