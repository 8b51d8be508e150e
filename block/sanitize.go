package block

import "fmt"

// UnsupportedTypeError reports a block whose type has no known
// creation-payload mapping. Callers choose whether to abort the job or
// skip the block and record a warning; content is never dropped silently.
type UnsupportedTypeError struct {
	ID   string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("block %s: no creation payload mapping for type %q", e.ID, e.Type)
}

// Sanitize converts a fetched block into a creation payload: a deep copy
// of the type payload with every read-only field removed. The returned
// payload has no children attached; the caller wires in the materialized
// child list.
//
// Synced blocks are never recreated as synced blocks - that would
// re-establish the alias linkage the clone exists to break. They sanitize
// to an empty toggle container that receives the inlined children.
func Sanitize(reg *Registry, b *Block) (*CreatePayload, error) {
	if b.Type == TypeSyncedBlock {
		return &CreatePayload{
			Type:    TypeToggle,
			Payload: map[string]any{"rich_text": []any{}, "color": "default"},
		}, nil
	}

	spec, ok := reg.Spec(b.Type)
	if !ok {
		return nil, &UnsupportedTypeError{ID: b.ID, Type: b.Type}
	}

	payload := make(map[string]any, len(b.Payload))
	for k, v := range b.Payload {
		payload[k] = v
	}
	for _, field := range readOnlyPayloadFields {
		delete(payload, field)
	}
	for _, field := range spec.Strip {
		delete(payload, field)
	}

	return &CreatePayload{
		Type:         b.Type,
		Payload:      payload,
		dualChildren: spec.DualChildren,
	}, nil
}

// readOnlyPayloadFields are stripped from every type payload regardless of
// type. The envelope fields (id, parent, timestamps, editors, archived
// state) never enter the payload in the first place; these are the
// server-owned fields some types duplicate inside the type payload.
var readOnlyPayloadFields = []string{
	"id",
	"object",
	"parent",
	"created_time",
	"last_edited_time",
	"created_by",
	"last_edited_by",
	"archived",
	"in_trash",
	"has_children",
	"children", // derived at marshal time, never carried over
}
