package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/cache"
)

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_BlockRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	b := &block.Block{
		ID:          "b1",
		Type:        "paragraph",
		HasChildren: true,
		Parent:      &block.Parent{Type: "block_id", BlockID: "p1"},
		Payload: map[string]any{
			"rich_text": []any{map[string]any{"plain_text": "cached"}},
			"color":     "default",
		},
	}
	require.NoError(t, store.PutBlock(ctx, b))

	got, ok, err := store.GetBlock(ctx, "b1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, b.Type, got.Type)
	assert.True(t, got.HasChildren)
	require.NotNil(t, got.Parent)
	assert.Equal(t, "p1", got.Parent.BlockID)
	assert.Equal(t, "cached", got.PlainText())
}

func TestStore_SyncedFromSurvivesRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	b := &block.Block{
		ID:   "ref1",
		Type: block.TypeSyncedBlock,
		Payload: map[string]any{
			"synced_from": map[string]any{"type": "block_id", "block_id": "orig1"},
		},
		SyncedFrom: &block.SyncedFrom{Type: "block_id", BlockID: "orig1"},
	}
	require.NoError(t, store.PutBlock(ctx, b))

	got, ok, err := store.GetBlock(ctx, "ref1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.IsAlias())
	assert.Equal(t, "orig1", got.AliasTarget())
}

func TestStore_GetBlock_Miss(t *testing.T) {
	store := openStore(t)

	got, ok, err := store.GetBlock(context.Background(), "absent", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_StaleEntryIgnored(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	b := &block.Block{ID: "b1", Type: "paragraph", Payload: map[string]any{}}
	require.NoError(t, store.PutBlock(ctx, b))

	// A tight max age expires the entry immediately.
	time.Sleep(1100 * time.Millisecond)
	_, ok, err := store.GetBlock(ctx, "b1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// maxAge <= 0 disables expiry.
	_, ok, err = store.GetBlock(ctx, "b1", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_PutBlockReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutBlock(ctx, &block.Block{ID: "b1", Type: "paragraph", Payload: map[string]any{}}))
	require.NoError(t, store.PutBlock(ctx, &block.Block{ID: "b1", Type: "toggle", Payload: map[string]any{}}))

	got, ok, err := store.GetBlock(ctx, "b1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "toggle", got.Type)
}

func TestStore_ChildrenRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	kids := []block.Block{
		{ID: "c1", Type: "paragraph", Payload: map[string]any{}},
		{ID: "c2", Type: "toggle", Payload: map[string]any{}},
		{ID: "c3", Type: "paragraph", Payload: map[string]any{}},
	}
	require.NoError(t, store.PutChildren(ctx, "parent1", kids))

	got, ok, err := store.GetChildren(ctx, "parent1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 3)
	for i, k := range got {
		assert.Equal(t, kids[i].ID, k.ID, "child order must survive the cache")
	}
}

func TestStore_EmptyChildrenCached(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutChildren(ctx, "leaf", nil))

	got, ok, err := store.GetChildren(ctx, "leaf", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "a known-empty child list is a hit, not a miss")
	assert.Empty(t, got)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := cache.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.PutBlock(context.Background(), &block.Block{ID: "b1", Type: "paragraph", Payload: map[string]any{}}))
	require.NoError(t, store.Close())

	store, err = cache.Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.GetBlock(context.Background(), "b1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "data persists across opens")
}
