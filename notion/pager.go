package notion

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/c360studio/blockclone/block"
)

// ChildPager iterates a block's direct children in order, one page at a
// time. A failed Next does not advance the cursor, and Cursor exposes the
// continuation point after each successful page, so a caller can resume
// after a transient failure without refetching prior pages.
type ChildPager struct {
	client   *Client
	blockID  string
	pageSize int
	cursor   string
	done     bool
}

// Children returns a pager over the block's direct children.
func (c *Client) Children(blockID string) *ChildPager {
	return &ChildPager{
		client:   c,
		blockID:  blockID,
		pageSize: MaxPageSize,
	}
}

// ChildrenAt returns a pager resumed from a previously saved cursor.
func (c *Client) ChildrenAt(blockID, cursor string) *ChildPager {
	p := c.Children(blockID)
	p.cursor = cursor
	return p
}

// WithPageSize lowers the page size below the API maximum.
func (p *ChildPager) WithPageSize(n int) *ChildPager {
	if n > 0 && n <= MaxPageSize {
		p.pageSize = n
	}
	return p
}

// HasMore reports whether another page may be available.
func (p *ChildPager) HasMore() bool {
	return !p.done
}

// Cursor returns the continuation cursor after the most recent successful
// page, "" before the first page.
func (p *ChildPager) Cursor() string {
	return p.cursor
}

type childListResponse struct {
	Results    []block.Block `json:"results"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor"`
}

// Next fetches the next page of children. After the final page it returns
// (nil, nil) and HasMore reports false.
func (p *ChildPager) Next(ctx context.Context) ([]block.Block, error) {
	if p.done {
		return nil, nil
	}

	query := url.Values{}
	query.Set("page_size", strconv.Itoa(p.pageSize))
	if p.cursor != "" {
		query.Set("start_cursor", p.cursor)
	}

	var resp childListResponse
	if err := p.client.do(ctx, "list_children", "GET", "/blocks/"+p.blockID+"/children", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("list children of %s: %w", p.blockID, err)
	}

	if resp.HasMore && resp.NextCursor != "" {
		p.cursor = resp.NextCursor
	} else {
		p.done = true
	}
	return resp.Results, nil
}
