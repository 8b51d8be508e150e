package clone

import (
	"context"
	"log/slog"

	"github.com/c360studio/blockclone/block"
)

// SyncedRef describes one synced block found during a page scan.
type SyncedRef struct {
	// ID is the synced block's own id.
	ID string `json:"id"`

	// Original is true for the canonical copy (synced_from null); false
	// for references pointing elsewhere.
	Original bool `json:"original"`

	// TargetID is the canonical source id. For originals it equals ID.
	TargetID string `json:"target_id"`

	// Depth is the nesting level below the scanned root, starting at 1.
	Depth int `json:"depth"`

	// Preview is the leading text of the block's first non-empty child,
	// "" when no preview could be read.
	Preview string `json:"preview,omitempty"`
}

// Scanner walks a page and reports every synced block in it, so an
// operator can decide which references to clone.
type Scanner struct {
	src      Source
	maxDepth int
	logger   *slog.Logger
}

// NewScanner creates a scanner. maxDepth <= 0 selects DefaultMaxDepth.
func NewScanner(src Source, maxDepth int, logger *slog.Logger) *Scanner {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{src: src, maxDepth: maxDepth, logger: logger}
}

// Scan lists the synced blocks under rootID in document order. The walk
// does not descend into synced blocks themselves (their content belongs
// to the source) or into child pages.
func (s *Scanner) Scan(ctx context.Context, rootID string) ([]SyncedRef, error) {
	var refs []SyncedRef
	if err := s.scan(ctx, rootID, 1, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (s *Scanner) scan(ctx context.Context, id string, depth int, refs *[]SyncedRef) error {
	if depth > s.maxDepth {
		return nil
	}

	kids, err := s.src.ListChildren(ctx, id)
	if err != nil {
		return err
	}

	for i := range kids {
		b := &kids[i]
		if b.Type == block.TypeSyncedBlock {
			ref := SyncedRef{
				ID:       b.ID,
				Original: !b.IsAlias(),
				TargetID: b.ID,
				Depth:    depth,
			}
			if b.IsAlias() {
				ref.TargetID = b.AliasTarget()
			}
			ref.Preview = s.preview(ctx, ref.TargetID)
			*refs = append(*refs, ref)
			continue
		}
		if b.Type == "child_page" {
			continue
		}
		if b.HasChildren {
			if err := s.scan(ctx, b.ID, depth+1, refs); err != nil {
				return err
			}
		}
	}
	return nil
}

// preview reads the first non-empty child text under id. Preview reads
// are advisory: a failure (an orphaned reference, say) degrades to an
// empty preview instead of failing the scan.
func (s *Scanner) preview(ctx context.Context, id string) string {
	kids, err := s.src.ListChildren(ctx, id)
	if err != nil {
		s.logger.Debug("preview unavailable", "block_id", id, "error", err)
		return ""
	}
	for i := range kids {
		if text := kids[i].Preview(5); text != "" {
			return text
		}
	}
	return ""
}
