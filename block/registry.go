package block

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TypeSpec describes how one block type maps onto a creation payload.
type TypeSpec struct {
	// Strip lists type-payload fields the creation API rejects as
	// read-only, beyond the envelope fields stripped for every type.
	Strip []string `yaml:"strip,omitempty"`

	// DualChildren marks container types whose wire representation
	// duplicates the child list: both the generic children array and a
	// children array nested inside the type payload must be populated
	// identically, or the creation API rejects the write.
	DualChildren bool `yaml:"dual_children,omitempty"`
}

// Registry maps block type tags to their creation-payload handling.
// Types absent from the registry have no known mapping and fail
// sanitization with an UnsupportedTypeError.
type Registry struct {
	specs map[string]TypeSpec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: map[string]TypeSpec{}}
}

// DefaultRegistry returns the built-in mapping table for the block types
// the creation API is known to accept.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, typ := range []string{
		"paragraph",
		"heading_1", "heading_2", "heading_3",
		"bulleted_list_item", "numbered_list_item",
		"to_do", "toggle", "quote", "callout",
		"code", "equation", "divider", "breadcrumb",
		"bookmark", "embed", "image", "video", "file", "pdf",
		"table_of_contents", "link_to_page",
	} {
		r.Register(typ, TypeSpec{})
	}

	// Container types with the dual-location child requirement.
	r.Register(TypeColumnList, TypeSpec{DualChildren: true})
	r.Register(TypeColumn, TypeSpec{DualChildren: true})
	r.Register(TypeTable, TypeSpec{DualChildren: true})
	r.Register(TypeTableRow, TypeSpec{})

	// Synced blocks are known but never recreated as-is; the sanitizer
	// rewrites them into plain containers. synced_from must never leak
	// into a creation payload.
	r.Register(TypeSyncedBlock, TypeSpec{Strip: []string{"synced_from"}})

	return r
}

// Register adds or replaces the spec for a type tag.
func (r *Registry) Register(typ string, spec TypeSpec) {
	r.specs[typ] = spec
}

// Spec returns the mapping for a type tag.
func (r *Registry) Spec(typ string) (TypeSpec, bool) {
	spec, ok := r.specs[typ]
	return spec, ok
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.specs))
	for typ := range r.specs {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// LoadFile merges type specs from a YAML file over the current registry,
// so deployments can extend or override the mapping table without code
// changes. The file is a map of type tag to spec:
//
//	my_custom_type:
//	  strip: [internal_field]
//	  dual_children: true
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read type registry: %w", err)
	}

	var specs map[string]TypeSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("parse type registry %s: %w", path, err)
	}

	for typ, spec := range specs {
		r.Register(typ, spec)
	}
	return nil
}
