package block_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/blockclone/block"
)

func TestBlock_UnmarshalJSON_Paragraph(t *testing.T) {
	wire := `{
		"object": "block",
		"id": "b1",
		"type": "paragraph",
		"created_time": "2024-01-01T00:00:00.000Z",
		"last_edited_time": "2024-01-02T00:00:00.000Z",
		"has_children": true,
		"archived": false,
		"parent": {"type": "page_id", "page_id": "p1"},
		"paragraph": {
			"rich_text": [{"type": "text", "text": {"content": "hello"}, "plain_text": "hello"}],
			"color": "default"
		}
	}`

	var b block.Block
	require.NoError(t, json.Unmarshal([]byte(wire), &b))

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, block.TypeParagraph, b.Type)
	assert.True(t, b.HasChildren)
	assert.False(t, b.Archived)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", b.CreatedTime)
	require.NotNil(t, b.Parent)
	assert.Equal(t, "page_id", b.Parent.Type)
	assert.Equal(t, "p1", b.Parent.PageID)
	assert.Equal(t, "default", b.Payload["color"])
	assert.False(t, b.IsAlias())
	assert.Empty(t, b.AliasTarget())
}

func TestBlock_UnmarshalJSON_SyncedReference(t *testing.T) {
	wire := `{
		"id": "ref1",
		"type": "synced_block",
		"has_children": false,
		"synced_block": {
			"synced_from": {"type": "block_id", "block_id": "orig1"}
		}
	}`

	var b block.Block
	require.NoError(t, json.Unmarshal([]byte(wire), &b))

	require.NotNil(t, b.SyncedFrom)
	assert.True(t, b.IsAlias())
	assert.Equal(t, "orig1", b.AliasTarget())
}

func TestBlock_UnmarshalJSON_SyncedOriginal(t *testing.T) {
	wire := `{
		"id": "orig1",
		"type": "synced_block",
		"has_children": true,
		"synced_block": {"synced_from": null}
	}`

	var b block.Block
	require.NoError(t, json.Unmarshal([]byte(wire), &b))

	assert.Nil(t, b.SyncedFrom)
	assert.False(t, b.IsAlias(), "an original synced block is terminal, not an alias")
	assert.True(t, b.HasChildren)
}

func TestBlock_UnmarshalJSON_MissingType(t *testing.T) {
	var b block.Block
	err := json.Unmarshal([]byte(`{"id": "b1"}`), &b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing type")
}

func TestBlock_UnmarshalJSON_UnknownTypeKept(t *testing.T) {
	// Unknown types still parse; the registry decides later whether they
	// have a creation mapping.
	wire := `{"id": "b1", "type": "some_future_type", "some_future_type": {"field": 1}}`

	var b block.Block
	require.NoError(t, json.Unmarshal([]byte(wire), &b))
	assert.Equal(t, "some_future_type", b.Type)
	assert.Equal(t, float64(1), b.Payload["field"])
}

func TestBlock_MarshalRoundTrip(t *testing.T) {
	wire := `{
		"id": "b1",
		"type": "paragraph",
		"has_children": true,
		"parent": {"type": "block_id", "block_id": "parent1"},
		"paragraph": {"rich_text": [], "color": "blue"}
	}`

	var b block.Block
	require.NoError(t, json.Unmarshal([]byte(wire), &b))

	data, err := json.Marshal(&b)
	require.NoError(t, err)

	var again block.Block
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, b.ID, again.ID)
	assert.Equal(t, b.Type, again.Type)
	assert.Equal(t, b.HasChildren, again.HasChildren)
	assert.Equal(t, b.Payload, again.Payload)
	require.NotNil(t, again.Parent)
	assert.Equal(t, "parent1", again.Parent.BlockID)
}

func TestBlock_PlainText(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{
			name: "plain_text runs",
			payload: map[string]any{
				"rich_text": []any{
					map[string]any{"plain_text": "hello "},
					map[string]any{"plain_text": "world"},
				},
			},
			want: "hello world",
		},
		{
			name: "text content fallback",
			payload: map[string]any{
				"rich_text": []any{
					map[string]any{"text": map[string]any{"content": "fallback"}},
				},
			},
			want: "fallback",
		},
		{
			name: "caption fallback",
			payload: map[string]any{
				"caption": []any{
					map[string]any{"plain_text": "a caption"},
				},
			},
			want: "a caption",
		},
		{
			name:    "no text at all",
			payload: map[string]any{"expression": "x=1"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &block.Block{Type: "paragraph", Payload: tt.payload}
			assert.Equal(t, tt.want, b.PlainText())
		})
	}
}

func TestBlock_Preview(t *testing.T) {
	b := &block.Block{
		Type: "paragraph",
		Payload: map[string]any{
			"rich_text": []any{
				map[string]any{"plain_text": "one two three four five"},
			},
		},
	}
	assert.Equal(t, "one two three", b.Preview(3))
	assert.Equal(t, "one two three four five", b.Preview(10))
}
