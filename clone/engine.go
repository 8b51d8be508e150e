package clone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/notion"
)

// Options controls a single replication job.
type Options struct {
	// DryRun plans the write set without performing it.
	DryRun bool

	// MaxDepth is the subtree recursion ceiling (default DefaultMaxDepth).
	MaxDepth int

	// MaxAliasHops is the alias indirection ceiling (default
	// DefaultMaxAliasHops).
	MaxAliasHops int

	// BatchSize is the per-write-call block count (default and maximum
	// DefaultBatchSize).
	BatchSize int

	// SkipUnsupported skips blocks with no creation mapping instead of
	// aborting.
	SkipUnsupported bool

	// ProbeContainers double-checks has_children on container types.
	ProbeContainers bool
}

// Summary reports the outcome of one replication job.
type Summary struct {
	JobID         string        `json:"job_id"`
	ReferenceID   string        `json:"reference_id"`
	SourceID      string        `json:"source_id"`
	DestinationID string        `json:"destination_id"`
	DryRun        bool          `json:"dry_run"`
	Planned       int           `json:"planned"`
	Created       int           `json:"created"`
	Batches       int           `json:"batches"`
	Skipped       []SkippedNode `json:"skipped,omitempty"`
	Errors        []string      `json:"errors,omitempty"`

	// Plan is populated on dry runs.
	Plan *Plan `json:"plan,omitempty"`
}

// Engine wires the resolver, materializer, sanitizer and writer into the
// full replication flow. Each job owns its own node cache and retry
// counters; engines hold no mutable state across jobs.
type Engine struct {
	src    Source
	fresh  Source
	dst    Destination
	reg    *block.Registry
	logger *slog.Logger
}

// NewEngine creates an engine. A nil registry selects the built-in type
// mapping table; a nil logger selects slog.Default.
func NewEngine(src Source, dst Destination, reg *block.Registry, logger *slog.Logger) *Engine {
	if reg == nil {
		reg = block.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{src: src, fresh: src, dst: dst, reg: reg, logger: logger}
}

// WithCachedReads serves tree reads from cached while keeping the
// writer's protection checks on the original, uncached source. Cached
// alias status must never approve a write.
func (e *Engine) WithCachedReads(cached Source) *Engine {
	e.src = cached
	return e
}

// Clone resolves refID to its canonical source, materializes the source
// subtree, and re-creates it as independent blocks under destID (or only
// plans the writes when opts.DryRun is set).
//
// Read-side failures abort before any write. Write-side failures abort
// the remaining batches but leave already-created blocks in place; the
// returned summary reports the partial result alongside the error. No
// source-side content is ever mutated.
func (e *Engine) Clone(ctx context.Context, refID, destID string, opts Options) (*Summary, error) {
	sum := &Summary{
		JobID:         uuid.New().String(),
		ReferenceID:   refID,
		DestinationID: destID,
		DryRun:        opts.DryRun,
	}
	logger := e.logger.With("job_id", sum.JobID)

	ref, err := e.src.GetBlock(ctx, refID)
	if err != nil {
		return sum, fmt.Errorf("fetch reference: %w", err)
	}

	resolver := NewResolver(e.src, opts.MaxAliasHops)
	source, err := resolver.Resolve(ctx, ref)
	if err != nil {
		if ref.IsAlias() && errors.Is(err, notion.ErrNotFound) {
			return sum, fmt.Errorf("reference %s points at a missing source (orphaned reference): %w", refID, err)
		}
		return sum, err
	}
	sum.SourceID = source.ID

	if !ref.IsAlias() {
		logger.Info("reference is not a synced reference, cloning its own subtree", "block_id", refID)
	} else {
		logger.Info("resolved canonical source", "reference_id", refID, "source_id", source.ID)
	}

	tree, err := NewMaterializer(e.src, MaterializerConfig{
		MaxDepth:        opts.MaxDepth,
		MaxAliasHops:    opts.MaxAliasHops,
		ProbeContainers: opts.ProbeContainers,
		Logger:          logger,
	}).Materialize(ctx, source)
	if err != nil {
		return sum, fmt.Errorf("materialize source subtree: %w", err)
	}

	policy := UnsupportedAbort
	if opts.SkipUnsupported {
		policy = UnsupportedSkip
	}
	payloads, skipped, err := BuildPayloads(e.reg, tree.Children, policy)
	if err != nil {
		return sum, err
	}
	sum.Skipped = skipped
	for _, s := range skipped {
		logger.Warn("skipping unsupported block", "block_id", s.ID, "type", s.Type)
	}

	plan := BuildPlan(payloads)
	sum.Planned = plan.TotalNodes()
	logger.Info("materialized write set",
		"blocks", plan.TotalNodes(),
		"top_level", plan.TopLevel(),
		"skipped", len(skipped))

	if opts.DryRun {
		sum.Plan = plan
		return sum, nil
	}

	writer := NewWriter(e.fresh, e.dst, opts.BatchSize, logger)
	created, batches, err := writer.Apply(ctx, destID, payloads)
	sum.Created = created
	sum.Batches = batches
	if err != nil {
		sum.Errors = append(sum.Errors, err.Error())
		return sum, fmt.Errorf("apply to destination: %w", err)
	}

	logger.Info("clone complete", "created", created, "batches", batches)
	return sum, nil
}
