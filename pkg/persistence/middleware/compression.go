package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/ports"
	"github.com/pierrec/lz4"
)

var compressedMagic = []byte("ARBLZ4\n")

type compressionMiddleware struct {
	next ports.DocumentStore
}

// NewCompressionMiddleware frames documents with LZ4. Documents written
// before compression was enabled are read back unchanged.
func NewCompressionMiddleware() Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &compressionMiddleware{next: next}
	}
}

func (m *compressionMiddleware) Save(ctx context.Context, name string, data []byte) error {
	var buf bytes.Buffer
	buf.Write(compressedMagic)
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("compress document: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compress document: %w", err)
	}
	return m.next.Save(ctx, name, buf.Bytes())
}

func (m *compressionMiddleware) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, compressedMagic) {
		return data, nil
	}
	var buf bytes.Buffer
	r := lz4.NewReader(bytes.NewReader(data[len(compressedMagic):]))
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (m *compressionMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *compressionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
