package clone

import (
	"context"
	"fmt"

	"github.com/c360studio/blockclone/block"
)

// DefaultMaxAliasHops bounds alias indirection chains. Distinct from the
// subtree depth ceiling: this counts pointer hops, not tree levels.
const DefaultMaxAliasHops = 8

// Resolver follows synced-block indirection to the canonical source.
// Alias relationships are treated as an id -> target-id lookup separate
// from the tree walk, so cycle and depth bounding stay isolated from
// ordinary recursion.
type Resolver struct {
	src     Source
	maxHops int
}

// NewResolver creates a resolver reading targets from src. maxHops <= 0
// selects DefaultMaxAliasHops.
func NewResolver(src Source, maxHops int) *Resolver {
	if maxHops <= 0 {
		maxHops = DefaultMaxAliasHops
	}
	return &Resolver{src: src, maxHops: maxHops}
}

// Resolve returns the terminal node at the end of b's indirection chain.
// A non-alias block resolves to itself, unchanged, with no fetches.
func (r *Resolver) Resolve(ctx context.Context, b *block.Block) (*block.Block, error) {
	chain, err := r.Chain(ctx, b)
	if err != nil {
		return nil, err
	}
	return chain[len(chain)-1], nil
}

// Chain returns every node along the indirection chain, starting at b and
// ending at the terminal node. A repeated target id fails with
// ErrCyclicAlias; exceeding the hop ceiling fails with
// ErrAliasChainTooDeep. Neither loops or recurses unbounded.
func (r *Resolver) Chain(ctx context.Context, b *block.Block) ([]*block.Block, error) {
	chain := []*block.Block{b}
	visited := map[string]bool{}
	if b.ID != "" {
		visited[b.ID] = true
	}

	cur := b
	for hops := 0; cur.IsAlias(); {
		hops++
		if hops > r.maxHops {
			return nil, fmt.Errorf("resolving %s: %w (ceiling %d)", b.ID, ErrAliasChainTooDeep, r.maxHops)
		}

		target := cur.AliasTarget()
		if visited[target] {
			return nil, fmt.Errorf("resolving %s: %w (repeated id %s)", b.ID, ErrCyclicAlias, target)
		}
		visited[target] = true

		next, err := r.src.GetBlock(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("follow alias %s -> %s: %w", cur.ID, target, err)
		}
		chain = append(chain, next)
		cur = next
	}
	return chain, nil
}
