package adapters

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"multiparty-params/internal/core"
	"multiparty-params/internal/ports"
	"multiparty-params/internal/shared"
	"multiparty-params/internal/types"
)

// SupportedCatalogVersion is the catalog file format understood here.
const SupportedCatalogVersion = "v1"

// CatalogFileAdapter implements CatalogLoaderPort using layered catalog
// yaml files. Each load merges component entries into the internal table;
// a later layer replaces an earlier entry for the same component type as
// a whole.
type CatalogFileAdapter struct {
	merged map[string]types.SchemaDescriptor

	// layers tracks load order for provenance.
	layers []string
}

func NewCatalogFileAdapter() *CatalogFileAdapter {
	return &CatalogFileAdapter{
		merged: make(map[string]types.SchemaDescriptor),
	}
}

// LoadBuiltin adds the embedded catalog as a layer.
func (a *CatalogFileAdapter) LoadBuiltin() error {
	catalog, err := builtinCatalog()
	if err != nil {
		return err
	}
	a.merge(builtinCatalogName, catalog)
	return nil
}

// LoadCatalog reads a catalog yaml file and merges its components.
func (a *CatalogFileAdapter) LoadCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read catalog file: " + path).
			WithCause(err)
	}
	catalog, err := parseCatalog(path, data)
	if err != nil {
		return err
	}
	a.merge(path, catalog)
	return nil
}

// Layers returns the loaded sources in load order.
func (a *CatalogFileAdapter) Layers() []string {
	return append([]string(nil), a.layers...)
}

func (a *CatalogFileAdapter) Freeze() ports.CatalogPort {
	return core.NewSchemaCatalog(a.merged)
}

func (a *CatalogFileAdapter) merge(source string, catalog types.CatalogFile) {
	for name, descriptor := range catalog.Components {
		key := shared.NormalizeComponentType(name)
		descriptor.Component = strings.TrimSpace(name)
		if _, exists := a.merged[key]; exists {
			log.Debug().
				Str("component", key).
				Str("layer", source).
				Msg("catalog entry overridden by later layer")
		}
		a.merged[key] = descriptor
	}
	a.layers = append(a.layers, source)
	log.Debug().
		Str("path", source).
		Int("components", len(catalog.Components)).
		Int("total", len(a.merged)).
		Msg("catalog layer loaded")
}

func parseCatalog(source string, data []byte) (types.CatalogFile, error) {
	var catalog types.CatalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return types.CatalogFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse catalog file: " + source).
			WithCause(err)
	}
	if catalog.CatalogVersion == "" {
		return types.CatalogFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog file missing catalog_version: " + source)
	}
	if catalog.CatalogVersion != SupportedCatalogVersion {
		return types.CatalogFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("catalog file %s has unsupported catalog_version %q", source, catalog.CatalogVersion))
	}
	for name, descriptor := range catalog.Components {
		if shared.NormalizeComponentType(name) == "" {
			return types.CatalogFile{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("catalog file has a component with an empty name: " + source)
		}
		for field, spec := range descriptor.Fields {
			if err := checkFieldSpec(spec); err != nil {
				return types.CatalogFile{}, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("catalog entry %s.%s in %s: %v", name, field, source, err))
			}
		}
	}
	return catalog, nil
}

// checkFieldSpec rejects descriptors the validator could not interpret.
func checkFieldSpec(spec types.FieldSpec) error {
	if len(spec.AnyOf) == 0 && !knownFieldKind(spec.Kind) {
		return fmt.Errorf("unknown kind %q", spec.Kind)
	}
	if spec.Kind == types.FieldKindEnum && len(spec.Enum) == 0 {
		return fmt.Errorf("enum kind without literals")
	}
	if spec.Min != nil && spec.Max != nil && *spec.Min > *spec.Max {
		return fmt.Errorf("min %g is greater than max %g", *spec.Min, *spec.Max)
	}
	for i, alternative := range spec.AnyOf {
		if err := checkFieldSpec(alternative); err != nil {
			return fmt.Errorf("any_of[%d]: %w", i, err)
		}
	}
	for name, nested := range spec.Fields {
		if err := checkFieldSpec(nested); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if spec.Items != nil {
		if err := checkFieldSpec(*spec.Items); err != nil {
			return fmt.Errorf("items: %w", err)
		}
	}
	return nil
}

func knownFieldKind(kind types.FieldKind) bool {
	switch types.FieldKind(strings.TrimSpace(string(kind))) {
	case types.FieldKindBoolean, types.FieldKindInteger, types.FieldKindFloat,
		types.FieldKindString, types.FieldKindEnum, types.FieldKindObject,
		types.FieldKindArray, types.FieldKindAny:
		return true
	}
	return false
}

var _ ports.CatalogLoaderPort = (*CatalogFileAdapter)(nil)
