package clone_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/blockclone/clone"
	"github.com/c360studio/blockclone/notion"
)

func TestResolver_NonAliasResolvesToItself(t *testing.T) {
	tree := newFakeTree()
	b := tree.addPage("b1", "paragraph")

	resolver := clone.NewResolver(tree, 0)
	got, err := resolver.Resolve(context.Background(), b)
	require.NoError(t, err)
	assert.Same(t, b, got)
	assert.Empty(t, tree.getCalls, "a non-alias must resolve without fetching")
}

func TestResolver_OriginalSyncedBlockIsTerminal(t *testing.T) {
	tree := newFakeTree()
	orig := tree.addOriginal("orig1", "")

	resolver := clone.NewResolver(tree, 0)
	got, err := resolver.Resolve(context.Background(), orig)
	require.NoError(t, err)
	assert.Same(t, orig, got)
}

func TestResolver_FollowsChain(t *testing.T) {
	tree := newFakeTree()
	tree.addOriginal("orig1", "")
	tree.addAlias("mid", "", "orig1")
	ref := tree.addAlias("ref", "", "mid")

	resolver := clone.NewResolver(tree, 0)
	chain, err := resolver.Chain(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "ref", chain[0].ID)
	assert.Equal(t, "mid", chain[1].ID)
	assert.Equal(t, "orig1", chain[2].ID)

	got, err := resolver.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "orig1", got.ID)
}

func TestResolver_CycleDetected(t *testing.T) {
	tree := newFakeTree()
	tree.addAlias("a", "", "b")
	tree.addAlias("b", "", "a")

	resolver := clone.NewResolver(tree, 0)
	_, err := resolver.Resolve(context.Background(), tree.blocks["a"])
	require.Error(t, err)
	assert.ErrorIs(t, err, clone.ErrCyclicAlias)
}

func TestResolver_SelfCycleDetected(t *testing.T) {
	tree := newFakeTree()
	self := tree.addAlias("a", "", "a")

	resolver := clone.NewResolver(tree, 0)
	_, err := resolver.Resolve(context.Background(), self)
	require.Error(t, err)
	assert.ErrorIs(t, err, clone.ErrCyclicAlias)
}

func TestResolver_ChainTooDeep(t *testing.T) {
	tree := newFakeTree()
	tree.addOriginal("orig", "")
	tree.addAlias("a3", "", "orig")
	tree.addAlias("a2", "", "a3")
	tree.addAlias("a1", "", "a2")

	resolver := clone.NewResolver(tree, 2)
	_, err := resolver.Resolve(context.Background(), tree.blocks["a1"])
	require.Error(t, err)
	assert.ErrorIs(t, err, clone.ErrAliasChainTooDeep)

	// Three hops fit in a ceiling of three.
	resolver = clone.NewResolver(tree, 3)
	got, err := resolver.Resolve(context.Background(), tree.blocks["a1"])
	require.NoError(t, err)
	assert.Equal(t, "orig", got.ID)
}

func TestResolver_OrphanedReference(t *testing.T) {
	tree := newFakeTree()
	ref := tree.addAlias("ref", "", "gone")

	resolver := clone.NewResolver(tree, 0)
	_, err := resolver.Resolve(context.Background(), ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, notion.ErrNotFound)
}
