package clone

import (
	"errors"
	"fmt"

	"github.com/c360studio/blockclone/block"
)

// UnsupportedPolicy decides what happens when a node's type has no known
// creation-payload mapping.
type UnsupportedPolicy int

const (
	// UnsupportedAbort fails the whole job before any write. Default.
	UnsupportedAbort UnsupportedPolicy = iota

	// UnsupportedSkip drops the node (and its descendants), records it
	// in the summary, and continues.
	UnsupportedSkip
)

// SkippedNode records a node dropped under UnsupportedSkip.
type SkippedNode struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// BuildPayloads sanitizes the materialized subtrees into creation
// payloads, preserving order. The returned payload tree is exactly what
// the writer submits and what the dry-run plan renders.
func BuildPayloads(reg *block.Registry, subtrees []*Subtree, policy UnsupportedPolicy) ([]*block.CreatePayload, []SkippedNode, error) {
	payloads := make([]*block.CreatePayload, 0, len(subtrees))
	var skipped []SkippedNode

	for _, st := range subtrees {
		p, err := block.Sanitize(reg, st.Node)
		if err != nil {
			var unsupported *block.UnsupportedTypeError
			if errors.As(err, &unsupported) && policy == UnsupportedSkip {
				skipped = append(skipped, SkippedNode{ID: unsupported.ID, Type: unsupported.Type})
				continue
			}
			return nil, nil, fmt.Errorf("sanitize: %w", err)
		}

		children, childSkipped, err := BuildPayloads(reg, st.Children, policy)
		if err != nil {
			return nil, nil, err
		}
		p.Children = children
		skipped = append(skipped, childSkipped...)
		payloads = append(payloads, p)
	}

	return payloads, skipped, nil
}
