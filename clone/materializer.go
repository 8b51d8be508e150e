package clone

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/blockclone/block"
)

// DefaultMaxDepth bounds subtree recursion. High enough for realistic
// nesting; the walk emits leaf placeholders at the ceiling instead of
// failing, so pathological or cyclic real-world trees terminate.
const DefaultMaxDepth = 8

// Subtree is a node plus its ordered direct children, fully fetched.
// Child order is preserved end to end; it is a correctness invariant, not
// a nicety.
type Subtree struct {
	Node     *block.Block
	Children []*Subtree

	// Truncated marks a node whose children exist remotely but were not
	// descended into because the depth ceiling was reached.
	Truncated bool
}

// NodeCount returns the number of nodes in the subtree, root included.
func (s *Subtree) NodeCount() int {
	n := 1
	for _, c := range s.Children {
		n += c.NodeCount()
	}
	return n
}

// MaterializerConfig tunes a tree walk. Zero values select defaults.
type MaterializerConfig struct {
	// MaxDepth is the subtree recursion ceiling.
	MaxDepth int

	// MaxAliasHops is the alias indirection ceiling, independent of
	// MaxDepth.
	MaxAliasHops int

	// ProbeContainers enables a one-item child listing for container
	// types when has_children reads false. The API under-reports
	// has_children for some container types; the probe catches children
	// the flag misses.
	ProbeContainers bool

	Logger *slog.Logger
}

// Materializer performs the read-only depth-first snapshot of a subtree.
type Materializer struct {
	src Source
	cfg MaterializerConfig
}

// NewMaterializer creates a materializer reading from src.
func NewMaterializer(src Source, cfg MaterializerConfig) *Materializer {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxAliasHops <= 0 {
		cfg.MaxAliasHops = DefaultMaxAliasHops
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Materializer{src: src, cfg: cfg}
}

// Materialize snapshots the subtree rooted at root. Aliases encountered
// during the walk are resolved before descent, which is what inlines
// nested synced content. The walk owns a per-invocation node cache so an
// id reached via two paths (an alias target referenced twice, say) is
// fetched once. No writes occur.
func (m *Materializer) Materialize(ctx context.Context, root *block.Block) (*Subtree, error) {
	w := &walk{
		src:      m.src,
		blocks:   map[string]*block.Block{},
		children: map[string][]block.Block{},
	}
	if root.ID != "" {
		w.blocks[root.ID] = root
	}
	resolver := NewResolver(w, m.cfg.MaxAliasHops)
	return m.subtree(ctx, w, resolver, root, m.cfg.MaxDepth)
}

func (m *Materializer) subtree(ctx context.Context, w *walk, resolver *Resolver, b *block.Block, depth int) (*Subtree, error) {
	// Children of an alias live under its canonical source; everything
	// else reads its own id. Resolving here, before descent, is what
	// inlines nested synced content into the clone.
	childSource := b
	if b.IsAlias() {
		terminal, err := resolver.Resolve(ctx, b)
		if err != nil {
			return nil, err
		}
		childSource = terminal
	}

	hasChildren := childSource.HasChildren
	if !hasChildren && m.cfg.ProbeContainers && likelyContainer(b.Type) && depth > 0 {
		probed, err := w.HasAnyChildren(ctx, childSource.ID)
		if err != nil {
			return nil, fmt.Errorf("probe children of %s: %w", childSource.ID, err)
		}
		if probed {
			m.cfg.Logger.Debug("container reported no children but has some",
				"block_id", childSource.ID, "type", b.Type)
		}
		hasChildren = probed
	}

	if !hasChildren {
		return &Subtree{Node: b}, nil
	}

	if depth <= 0 {
		// Ceiling reached: emit a leaf placeholder rather than failing.
		m.cfg.Logger.Warn("depth ceiling reached, emitting leaf placeholder",
			"block_id", b.ID, "type", b.Type)
		return &Subtree{Node: b, Truncated: true}, nil
	}

	kids, err := w.ListChildren(ctx, childSource.ID)
	if err != nil {
		return nil, err
	}

	st := &Subtree{Node: b, Children: make([]*Subtree, 0, len(kids))}
	for i := range kids {
		child, err := m.subtree(ctx, w, resolver, &kids[i], depth-1)
		if err != nil {
			return nil, err
		}
		st.Children = append(st.Children, child)
	}
	return st, nil
}

// likelyContainer lists types that commonly nest children even when the
// envelope says otherwise.
func likelyContainer(typ string) bool {
	switch typ {
	case "paragraph", "heading_1", "heading_2", "heading_3",
		"bulleted_list_item", "numbered_list_item", "to_do",
		"toggle", "callout", "quote",
		block.TypeColumnList, block.TypeColumn, block.TypeTable:
		return true
	}
	return false
}

// walk is the per-invocation read cache. It satisfies Source so the
// resolver shares it.
type walk struct {
	src      Source
	blocks   map[string]*block.Block
	children map[string][]block.Block
}

func (w *walk) GetBlock(ctx context.Context, id string) (*block.Block, error) {
	if b, ok := w.blocks[id]; ok {
		return b, nil
	}
	b, err := w.src.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	w.blocks[id] = b
	return b, nil
}

func (w *walk) ListChildren(ctx context.Context, id string) ([]block.Block, error) {
	if kids, ok := w.children[id]; ok {
		return kids, nil
	}
	kids, err := w.src.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	w.children[id] = kids
	return kids, nil
}

func (w *walk) HasAnyChildren(ctx context.Context, id string) (bool, error) {
	if kids, ok := w.children[id]; ok {
		return len(kids) > 0, nil
	}
	return w.src.HasAnyChildren(ctx, id)
}
