package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/sanitize"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunDocumentStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "patrol", []byte("<root/>")))
	data, err := os.ReadFile(filepath.Join(dir, "patrol.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<root/>", string(data))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"patrol"}, names)

	assert.ErrorIs(t, store.Save(ctx, "../escape", nil), sanitize.ErrInvalidName)
	_, err = store.Load(ctx, "a/b")
	assert.ErrorIs(t, err, sanitize.ErrInvalidName)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStore_Watch(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "patrol", []byte("<root/>")))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "tree.xml")
	require.NoError(t, os.WriteFile(target, []byte("<root/>"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := file.WatchFile(ctx, target)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.xml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("<root></root>"), 0o644))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}
}
