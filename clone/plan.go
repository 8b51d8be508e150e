package clone

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/blockclone/block"
)

// Plan is the dry-run rendering of a write set. It is derived from the
// same payload tree the writer submits, so the plan enumerates exactly
// the nodes a real run would attempt to create, in the same order.
type Plan struct {
	Entries []PlanEntry `json:"entries"`
}

// PlanEntry describes one block the write would create.
type PlanEntry struct {
	Type     string `json:"type"`
	Depth    int    `json:"depth"`
	Children int    `json:"children"`
}

// BuildPlan enumerates a payload set in creation order, depth-first.
func BuildPlan(payloads []*block.CreatePayload) *Plan {
	p := &Plan{}
	p.walk(payloads, 0)
	return p
}

func (p *Plan) walk(payloads []*block.CreatePayload, depth int) {
	for _, payload := range payloads {
		p.Entries = append(p.Entries, PlanEntry{
			Type:     payload.Type,
			Depth:    depth,
			Children: len(payload.Children),
		})
		p.walk(payload.Children, depth+1)
	}
}

// TotalNodes returns the number of blocks the write would create.
func (p *Plan) TotalNodes() int {
	return len(p.Entries)
}

// TopLevel returns the number of top-level blocks, the unit the writer
// chunks into batches.
func (p *Plan) TopLevel() int {
	n := 0
	for _, e := range p.Entries {
		if e.Depth == 0 {
			n++
		}
	}
	return n
}

// BatchSizes returns the write-call sizes a real run would issue for the
// given per-call ceiling, in order.
func (p *Plan) BatchSizes(batchSize int) []int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	remaining := p.TopLevel()
	var sizes []int
	for remaining > 0 {
		n := min(batchSize, remaining)
		sizes = append(sizes, n)
		remaining -= n
	}
	return sizes
}

// Render writes a human-readable plan: one line per block, indented by
// depth, plus a batch summary. No network calls are made.
func (p *Plan) Render(w io.Writer, batchSize int) error {
	sizes := p.BatchSizes(batchSize)
	if _, err := fmt.Fprintf(w, "plan: %d block(s), %d top-level, %d write call(s)\n",
		p.TotalNodes(), p.TopLevel(), len(sizes)); err != nil {
		return err
	}
	for i, size := range sizes {
		if _, err := fmt.Fprintf(w, "  batch %d: %d block(s)\n", i+1, size); err != nil {
			return err
		}
	}
	for _, e := range p.Entries {
		indent := strings.Repeat("  ", e.Depth+1)
		line := fmt.Sprintf("%s- %s", indent, e.Type)
		if e.Children > 0 {
			line += fmt.Sprintf(" (%d children)", e.Children)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
