// Package clone implements the hierarchical content replication engine:
// resolve a reference block to its canonical source, materialize the
// source's entire subtree, sanitize every node into a creation payload,
// and re-insert the result as an independent subtree under a destination -
// without ever writing into synced content.
package clone

import (
	"context"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/notion"
)

// Source is the read side of the remote tree. *notion.Client satisfies
// it, as does the caching wrapper in the cache package; tests use
// in-memory fakes.
type Source interface {
	GetBlock(ctx context.Context, id string) (*block.Block, error)
	ListChildren(ctx context.Context, id string) ([]block.Block, error)
	HasAnyChildren(ctx context.Context, id string) (bool, error)
}

// Destination is the write side of the remote tree.
type Destination interface {
	AppendChildren(ctx context.Context, id string, children []*block.CreatePayload) (*notion.AppendResult, error)
}
