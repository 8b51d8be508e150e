package clone_test

import (
	"context"
	"fmt"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/clone"
	"github.com/c360studio/blockclone/notion"
)

// fakeTree is an in-memory block store implementing clone.Source and
// clone.Destination, with call accounting for cache and ordering
// assertions.
type fakeTree struct {
	blocks   map[string]*block.Block
	children map[string][]string

	getCalls  map[string]int
	listCalls map[string]int

	appends []appendCall

	// failAppendAt makes the Nth append call fail (1-based); 0 never
	// fails.
	failAppendAt int
}

type appendCall struct {
	destID   string
	payloads []*block.CreatePayload
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		blocks:    map[string]*block.Block{},
		children:  map[string][]string{},
		getCalls:  map[string]int{},
		listCalls: map[string]int{},
	}
}

// add registers a block; parentID "" leaves the parent unset (page
// root). Returns the block for payload tweaks.
func (f *fakeTree) add(id, typ, parentID string) *block.Block {
	b := &block.Block{
		ID:      id,
		Type:    typ,
		Payload: map[string]any{},
	}
	if typ == block.TypeParagraph || typ == block.TypeToggle {
		b.Payload["rich_text"] = []any{}
	}
	if parentID != "" {
		b.Parent = &block.Parent{Type: "block_id", BlockID: parentID}
		f.children[parentID] = append(f.children[parentID], id)
		f.blocks[parentID].HasChildren = true
	}
	f.blocks[id] = b
	return b
}

// addPage registers a page-parented block, a top-level tree root.
func (f *fakeTree) addPage(id, typ string) *block.Block {
	b := f.add(id, typ, "")
	b.Parent = &block.Parent{Type: "page_id", PageID: "page1"}
	return b
}

// addAlias registers a synced-block reference pointing at targetID.
func (f *fakeTree) addAlias(id, parentID, targetID string) *block.Block {
	b := f.add(id, block.TypeSyncedBlock, parentID)
	b.SyncedFrom = &block.SyncedFrom{Type: "block_id", BlockID: targetID}
	b.Payload["synced_from"] = map[string]any{"type": "block_id", "block_id": targetID}
	return b
}

// addOriginal registers an original synced block (synced_from null).
func (f *fakeTree) addOriginal(id, parentID string) *block.Block {
	b := f.add(id, block.TypeSyncedBlock, parentID)
	b.Payload["synced_from"] = nil
	return b
}

func (f *fakeTree) GetBlock(ctx context.Context, id string) (*block.Block, error) {
	f.getCalls[id]++
	b, ok := f.blocks[id]
	if !ok {
		return nil, fmt.Errorf("get block %s: %w", id, notion.ErrNotFound)
	}
	return b, nil
}

func (f *fakeTree) ListChildren(ctx context.Context, id string) ([]block.Block, error) {
	f.listCalls[id]++
	if _, ok := f.blocks[id]; !ok {
		return nil, fmt.Errorf("list children of %s: %w", id, notion.ErrNotFound)
	}
	var kids []block.Block
	for _, childID := range f.children[id] {
		kids = append(kids, *f.blocks[childID])
	}
	return kids, nil
}

func (f *fakeTree) HasAnyChildren(ctx context.Context, id string) (bool, error) {
	return len(f.children[id]) > 0, nil
}

func (f *fakeTree) AppendChildren(ctx context.Context, id string, children []*block.CreatePayload) (*notion.AppendResult, error) {
	if f.failAppendAt > 0 && len(f.appends)+1 == f.failAppendAt {
		return nil, fmt.Errorf("append to %s: %w", id, notion.ErrRateLimited)
	}
	f.appends = append(f.appends, appendCall{destID: id, payloads: children})

	result := &notion.AppendResult{}
	for i, p := range children {
		result.Results = append(result.Results, block.Block{
			ID:   fmt.Sprintf("created-%d-%d", len(f.appends), i),
			Type: p.Type,
		})
	}
	return result, nil
}

var (
	_ clone.Source      = (*fakeTree)(nil)
	_ clone.Destination = (*fakeTree)(nil)
)
