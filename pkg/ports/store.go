package ports

import (
	"context"
)

// DocumentStore defines the interface for persisting behavior tree documents.
// Documents are opaque XML bytes addressed by name.
type DocumentStore interface {
	// Save persists the document under the given name, replacing any previous content.
	Save(ctx context.Context, name string, data []byte) error

	// Load retrieves the document with the given name.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, name string) ([]byte, error)

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored documents.
	List(ctx context.Context) ([]string, error)
}
