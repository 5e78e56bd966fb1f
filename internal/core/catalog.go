package core

import (
	"sort"
	"strings"

	"multiparty-params/internal/ports"
	"multiparty-params/internal/shared"
	"multiparty-params/internal/types"
)

// SchemaCatalog is an immutable registry of component schemas. It is built
// once and then shared by any number of concurrent resolutions.
type SchemaCatalog struct {
	entries map[string]types.SchemaDescriptor
	names   []string
}

// NewSchemaCatalog copies descriptors into a new catalog. Entries are
// keyed by the normalized component type; the declared name is kept as
// the descriptor's Component for display.
func NewSchemaCatalog(descriptors map[string]types.SchemaDescriptor) SchemaCatalog {
	entries := make(map[string]types.SchemaDescriptor, len(descriptors))
	for name, descriptor := range descriptors {
		display := strings.TrimSpace(descriptor.Component)
		if display == "" {
			display = strings.TrimSpace(name)
		}
		key := shared.NormalizeComponentType(display)
		if key == "" {
			continue
		}
		descriptor.Component = display
		fields := make(map[string]types.FieldSpec, len(descriptor.Fields))
		for field, spec := range descriptor.Fields {
			fields[field] = spec
		}
		descriptor.Fields = fields
		entries[key] = descriptor
	}
	names := make([]string, 0, len(entries))
	for _, descriptor := range entries {
		names = append(names, descriptor.Component)
	}
	sort.Strings(names)
	return SchemaCatalog{entries: entries, names: names}
}

func (c SchemaCatalog) Lookup(componentType string) (types.SchemaDescriptor, bool) {
	descriptor, ok := c.entries[shared.NormalizeComponentType(componentType)]
	return descriptor, ok
}

func (c SchemaCatalog) Components() []string {
	return append([]string(nil), c.names...)
}

func (c SchemaCatalog) Len() int {
	return len(c.entries)
}

var _ ports.CatalogPort = SchemaCatalog{}
