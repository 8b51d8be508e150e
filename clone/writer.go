package clone

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/notion"
)

// DefaultBatchSize matches the creation API's per-call ceiling.
const DefaultBatchSize = notion.MaxAppendChildren

// maxAncestorClimb bounds the parent walk of the protection check.
const maxAncestorClimb = 32

// Writer applies a sanitized payload set under a destination block in
// size-bounded, sequential batches.
//
// There is no transactional guarantee across batches: a batch failure
// aborts the remaining batches but already-written batches stand. The
// caller gets a partial-success summary either way.
type Writer struct {
	src       Source
	dst       Destination
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a writer. src is used for the fresh alias-status
// check on the destination and must not serve cached reads; protection
// decisions never trust a cache. batchSize <= 0 or above the API ceiling
// selects DefaultBatchSize.
func NewWriter(src Source, dst Destination, batchSize int, logger *slog.Logger) *Writer {
	if batchSize <= 0 || batchSize > notion.MaxAppendChildren {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{src: src, dst: dst, batchSize: batchSize, logger: logger}
}

// Apply writes the payloads, in order, as children of destID. It returns
// the number of nodes created (nested descendants included) and the
// number of batches written. On a mid-job failure both counts reflect
// what actually landed.
func (w *Writer) Apply(ctx context.Context, destID string, payloads []*block.CreatePayload) (created, batches int, err error) {
	if err := w.checkProtected(ctx, destID); err != nil {
		return 0, 0, err
	}

	total := (len(payloads) + w.batchSize - 1) / w.batchSize
	for start := 0; start < len(payloads); start += w.batchSize {
		// Cancellation is honored between batches, never mid-batch.
		if err := ctx.Err(); err != nil {
			return created, batches, err
		}

		end := min(start+w.batchSize, len(payloads))
		batch := payloads[start:end]

		if _, err := w.dst.AppendChildren(ctx, destID, batch); err != nil {
			return created, batches, fmt.Errorf("batch %d/%d: %w", batches+1, total, err)
		}

		batches++
		for _, p := range batch {
			created += p.NodeCount()
		}
		w.logger.Debug("batch written",
			"destination", destID,
			"batch", batches,
			"batches_total", total,
			"blocks", len(batch))
	}

	return created, batches, nil
}

// checkProtected fails with ErrProtectedDestination when the destination
// is a synced block or sits anywhere beneath one. The check always uses
// freshly fetched blocks: a stale cache must never approve a write into
// a region that has since become synced.
func (w *Writer) checkProtected(ctx context.Context, destID string) error {
	cur := destID
	for i := 0; i < maxAncestorClimb; i++ {
		b, err := w.src.GetBlock(ctx, cur)
		if err != nil {
			return fmt.Errorf("check destination %s: %w", destID, err)
		}
		if b.Type == block.TypeSyncedBlock {
			return fmt.Errorf("destination %s: %w (synced block %s)", destID, ErrProtectedDestination, b.ID)
		}
		if b.Parent == nil || b.Parent.Type != "block_id" || b.Parent.BlockID == "" {
			return nil
		}
		cur = b.Parent.BlockID
	}
	return fmt.Errorf("check destination %s: ancestor chain longer than %d blocks", destID, maxAncestorClimb)
}
