package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunDocumentStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	doc := []byte("<root/>")
	require.NoError(t, store.Save(ctx, "a", doc))
	doc[1] = 'X'

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "<root/>", string(loaded))
	loaded[1] = 'Y'

	again, _ := store.Load(ctx, "a")
	assert.Equal(t, "<root/>", string(again))
}
