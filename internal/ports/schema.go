package ports

import "multiparty-params/internal/types"

// CatalogPort answers which parameters a component type accepts.
//
// Lookup never fails for unknown types; it reports (zero, false) and the
// caller applies its unknown-component policy.  Implementations must be
// safe for concurrent readers.
type CatalogPort interface {
	Lookup(componentType string) (types.SchemaDescriptor, bool)

	// Components returns the known component types in sorted order.
	Components() []string
}

// CatalogLoaderPort builds a catalog from layered sources.  Each call to
// LoadCatalog adds a layer; when two layers describe the same component
// type, the last-loaded layer wins for the whole entry.
type CatalogLoaderPort interface {
	LoadBuiltin() error
	LoadCatalog(path string) error

	// Freeze returns an immutable catalog holding every layer loaded so
	// far.  Later loads do not affect catalogs already frozen.
	Freeze() CatalogPort
}
