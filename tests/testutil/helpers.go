// Package testutil provides shared test helpers used across integration
// and e2e test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"multiparty-params/internal/adapters"
	"multiparty-params/internal/ports"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// Fixture returns the path of a file under fixtures/.
func Fixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "fixtures", name)
}

// Catalog loads the builtin catalog followed by the given catalog files.
func Catalog(t *testing.T, paths ...string) ports.CatalogPort {
	t.Helper()
	loader := adapters.NewCatalogFileAdapter()
	require.NoError(t, loader.LoadBuiltin())
	for _, path := range paths {
		require.NoError(t, loader.LoadCatalog(path))
	}
	return loader.Freeze()
}
