package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Catalog lists the known component types, or describes one of them when
// req.Component is set.
func (s Service) Catalog(req CatalogRequest) (CatalogResult, error) {
	catalog, err := s.loadCatalog(req.Catalog)
	if err != nil {
		return CatalogResult{}, err
	}
	result := CatalogResult{Components: catalog.Components()}
	component := strings.TrimSpace(req.Component)
	if component == "" {
		return result, nil
	}
	descriptor, ok := catalog.Lookup(component)
	if !ok {
		return CatalogResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("component type not in catalog: " + component)
	}
	result.Descriptor = &descriptor
	return result, nil
}
