package block

import "encoding/json"

// CreatePayload is a creation-ready block: the fetched node stripped of
// server-owned fields, plus the materialized children to create beneath it.
//
// Children is the single canonical ordered child list. For dual-children
// container types the second required location (the children array nested
// inside the type payload) is derived from it at marshal time, never
// maintained separately.
type CreatePayload struct {
	Type     string
	Payload  map[string]any
	Children []*CreatePayload

	dualChildren bool
}

// NodeCount returns the number of blocks this payload would create,
// including itself and all descendants.
func (p *CreatePayload) NodeCount() int {
	n := 1
	for _, c := range p.Children {
		n += c.NodeCount()
	}
	return n
}

// MarshalJSON emits the wire form expected by the creation API:
//
//	{"type": T, T: {...}, "children": [...]}
//
// with the child list mirrored into the type payload for dual-children
// container types.
func (p *CreatePayload) MarshalJSON() ([]byte, error) {
	inner := make(map[string]any, len(p.Payload)+1)
	for k, v := range p.Payload {
		inner[k] = v
	}

	out := map[string]any{
		"type": p.Type,
		p.Type: inner,
	}
	if len(p.Children) > 0 {
		out["children"] = p.Children
		if p.dualChildren {
			inner["children"] = p.Children
		}
	}
	return json.Marshal(out)
}
