package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiparty-params/internal/types"
)

func TestBuiltinCatalogLoads(t *testing.T) {
	loader := NewCatalogFileAdapter()
	require.NoError(t, loader.LoadBuiltin())
	catalog := loader.Freeze()

	for _, name := range []string{
		types.JobParametersComponent,
		"reader",
		"data_transform",
		"intersection",
		"hetero_lr",
		"homo_lr",
		"hetero_secureboost",
		"evaluation",
		"label_transform",
		"secure_information_retrieval",
		"feature_scale",
		"hetero_feature_binning",
		"sample",
		"union",
	} {
		_, ok := catalog.Lookup(name)
		assert.True(t, ok, "builtin catalog should describe %s", name)
	}

	lr, ok := catalog.Lookup("HeteroLR")
	require.True(t, ok, "lookup normalizes component type names")
	assert.Equal(t, "hetero_lr", lr.Component)
	assert.Contains(t, catalog.Components(), "hetero_lr")
	batch := lr.Fields["batch_size"]
	assert.Equal(t, types.FieldKindInteger, batch.Kind)
	require.NotNil(t, batch.Min)
	assert.Equal(t, 1.0, *batch.Min)
	require.Len(t, batch.Sentinels, 1)
	assert.True(t, batch.Sentinels[0].Equal(types.NewInt(-1)))

	homo, ok := catalog.Lookup("homo_lr")
	require.True(t, ok)
	assert.Contains(t, homo.Fields, "penalty", "homo_lr inherits the shared lr fields")
	assert.Contains(t, homo.Fields, "aggregate_iters")

	sir, ok := catalog.Lookup("secure_information_retrieval")
	require.True(t, ok)
	assert.Equal(t, ">=1.7", sir.Requires)
	assert.Equal(t, "1.7", sir.Fields["key_size"].DeprecatedSince)
	assert.Len(t, sir.Fields["target_cols"].AnyOf, 2)
}

func TestCatalogLayersOverrideWholeEntries(t *testing.T) {
	loader := NewCatalogFileAdapter()
	require.NoError(t, loader.LoadBuiltin())
	require.NoError(t, loader.LoadCatalog("../../fixtures/catalog-extra.yaml"))
	catalog := loader.Freeze()

	lr, ok := catalog.Lookup("hetero_lr")
	require.True(t, ok)
	assert.Equal(t, []string{"L2"}, lr.Fields["penalty"].Enum)
	assert.NotContains(t, lr.Fields, "optimizer", "later layer replaces the entry as a whole")

	psi, ok := catalog.Lookup("psi")
	require.True(t, ok)
	assert.Equal(t, ">=2.0", psi.Requires)

	_, ok = catalog.Lookup("reader")
	assert.True(t, ok, "entries from earlier layers survive")

	if diff := cmp.Diff([]string{"builtin", "../../fixtures/catalog-extra.yaml"}, loader.Layers()); diff != "" {
		t.Fatalf("unexpected layers (-want +got):\n%s", diff)
	}
}

func TestFrozenCatalogIgnoresLaterLayers(t *testing.T) {
	loader := NewCatalogFileAdapter()
	require.NoError(t, loader.LoadBuiltin())
	frozen := loader.Freeze()
	require.NoError(t, loader.LoadCatalog("../../fixtures/catalog-extra.yaml"))

	_, ok := frozen.Lookup("psi")
	assert.False(t, ok)
}

func TestLoadCatalogErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	tests := []struct {
		name string
		path string
		code errbuilder.ErrCode
	}{
		{name: "missing", path: filepath.Join(dir, "none.yaml"), code: errbuilder.CodeNotFound},
		{name: "no version", path: write("v.yaml", "components: {}\n"), code: errbuilder.CodeInvalidArgument},
		{name: "future version", path: write("v2.yaml", "catalog_version: v9\ncomponents: {}\n"), code: errbuilder.CodeInvalidArgument},
		{
			name: "unknown kind",
			path: write("kind.yaml", "catalog_version: v1\ncomponents:\n  x:\n    fields:\n      a:\n        kind: decimal\n"),
			code: errbuilder.CodeInvalidArgument,
		},
		{
			name: "enum without literals",
			path: write("enum.yaml", "catalog_version: v1\ncomponents:\n  x:\n    fields:\n      a:\n        kind: enum\n"),
			code: errbuilder.CodeInvalidArgument,
		},
		{
			name: "inverted bounds",
			path: write("bounds.yaml", "catalog_version: v1\ncomponents:\n  x:\n    fields:\n      a:\n        kind: integer\n        min: 5\n        max: 1\n"),
			code: errbuilder.CodeInvalidArgument,
		},
		{
			name: "bad nested item",
			path: write("items.yaml", "catalog_version: v1\ncomponents:\n  x:\n    fields:\n      a:\n        kind: array\n        items:\n          kind: tuple\n"),
			code: errbuilder.CodeInvalidArgument,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := NewCatalogFileAdapter().LoadCatalog(tt.path)
			require.Error(t, err)
			if diff := cmp.Diff(tt.code, errbuilder.CodeOf(err)); diff != "" {
				t.Fatalf("unexpected error code (-want +got):\n%s", diff)
			}
		})
	}
}
