// Package block defines the wire-level data model for nodes in a
// hierarchical document store and the sanitization step that turns a
// fetched node into a creation-ready payload.
//
// A Block is a value snapshot of a remote node at one point in time. The
// type-specific payload is kept as generic JSON so the model stays open to
// block types the engine has never seen; the Registry decides which types
// have a known creation-payload mapping.
package block

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Well-known block type tags.
const (
	TypeParagraph   = "paragraph"
	TypeToggle      = "toggle"
	TypeSyncedBlock = "synced_block"
	TypeColumnList  = "column_list"
	TypeColumn      = "column"
	TypeTable       = "table"
	TypeTableRow    = "table_row"
)

// Parent identifies the container a block lives under.
type Parent struct {
	Type       string `json:"type"`
	BlockID    string `json:"block_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	Workspace  bool   `json:"workspace,omitempty"`
}

// SyncedFrom points a synced-block reference at its canonical source.
// A synced block whose synced_from is null is an "original": its content
// is stored as its own children and other blocks alias it.
type SyncedFrom struct {
	Type    string `json:"type"`
	BlockID string `json:"block_id"`
}

// Block is a single content node fetched from the remote store.
//
// Payload holds the type-specific object (the value keyed by Type in the
// wire format), untouched. SyncedFrom is a parsed view of
// Payload["synced_from"] and is non-nil only for reference synced blocks.
type Block struct {
	ID             string
	Type           string
	HasChildren    bool
	Archived       bool
	CreatedTime    string
	LastEditedTime string
	Parent         *Parent
	Payload        map[string]any
	SyncedFrom     *SyncedFrom
}

// IsAlias reports whether the block is a synced-block *reference*, i.e. a
// node whose content lives elsewhere. Original synced blocks (synced_from
// null) are terminal: their children are stored under their own id.
func (b *Block) IsAlias() bool {
	return b.Type == TypeSyncedBlock && b.SyncedFrom != nil && b.SyncedFrom.BlockID != ""
}

// AliasTarget returns the canonical source id for a reference synced block,
// or "" if the block is not an alias.
func (b *Block) AliasTarget() string {
	if !b.IsAlias() {
		return ""
	}
	return b.SyncedFrom.BlockID
}

// blockEnvelope covers the server-owned fields shared by every block type.
type blockEnvelope struct {
	Object         string  `json:"object,omitempty"`
	ID             string  `json:"id,omitempty"`
	Type           string  `json:"type"`
	HasChildren    bool    `json:"has_children,omitempty"`
	Archived       bool    `json:"archived,omitempty"`
	CreatedTime    string  `json:"created_time,omitempty"`
	LastEditedTime string  `json:"last_edited_time,omitempty"`
	Parent         *Parent `json:"parent,omitempty"`
}

// UnmarshalJSON parses the generic envelope and captures the type-specific
// payload verbatim.
func (b *Block) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Type == "" {
		return fmt.Errorf("block %s: missing type", env.ID)
	}

	b.ID = env.ID
	b.Type = env.Type
	b.HasChildren = env.HasChildren
	b.Archived = env.Archived
	b.CreatedTime = env.CreatedTime
	b.LastEditedTime = env.LastEditedTime
	b.Parent = env.Parent

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields[b.Type]; ok {
		if err := json.Unmarshal(raw, &b.Payload); err != nil {
			return fmt.Errorf("block %s: parse %s payload: %w", b.ID, b.Type, err)
		}
	}
	if b.Payload == nil {
		b.Payload = map[string]any{}
	}

	if b.Type == TypeSyncedBlock {
		if sf, ok := b.Payload["synced_from"].(map[string]any); ok {
			target := &SyncedFrom{}
			if t, ok := sf["type"].(string); ok {
				target.Type = t
			}
			if id, ok := sf["block_id"].(string); ok {
				target.BlockID = id
			}
			if target.BlockID != "" {
				b.SyncedFrom = target
			}
		}
	}

	return nil
}

// MarshalJSON reassembles the wire representation. Used by the node cache
// to persist snapshots; never used to build creation payloads.
func (b *Block) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"object": "block",
		"type":   b.Type,
	}
	if b.ID != "" {
		out["id"] = b.ID
	}
	if b.HasChildren {
		out["has_children"] = true
	}
	if b.Archived {
		out["archived"] = true
	}
	if b.CreatedTime != "" {
		out["created_time"] = b.CreatedTime
	}
	if b.LastEditedTime != "" {
		out["last_edited_time"] = b.LastEditedTime
	}
	if b.Parent != nil {
		out["parent"] = b.Parent
	}
	if b.Payload != nil {
		out[b.Type] = b.Payload
	}
	return json.Marshal(out)
}

// PlainText flattens the block's rich-text runs into a plain string.
// Blocks without rich text (dividers, tables, ...) return "".
func (b *Block) PlainText() string {
	runs, ok := b.Payload["rich_text"].([]any)
	if !ok {
		// Image-like blocks carry text in a caption instead.
		runs, ok = b.Payload["caption"].([]any)
		if !ok {
			return ""
		}
	}

	var sb strings.Builder
	for _, r := range runs {
		run, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := run["plain_text"].(string); ok {
			sb.WriteString(s)
			continue
		}
		if text, ok := run["text"].(map[string]any); ok {
			if s, ok := text["content"].(string); ok {
				sb.WriteString(s)
			}
		}
	}
	return sb.String()
}

// Preview returns at most n leading words of the block's plain text,
// for scan listings.
func (b *Block) Preview(n int) string {
	words := strings.Fields(b.PlainText())
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
