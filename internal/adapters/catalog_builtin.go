package adapters

import (
	_ "embed"
	"sync"

	"multiparty-params/internal/types"
)

const builtinCatalogName = "builtin"

//go:embed catalog/builtin.yaml
var builtinCatalogData []byte

var (
	builtinOnce   sync.Once
	builtinParsed types.CatalogFile
	builtinErr    error
)

// builtinCatalog parses the embedded catalog once per process. Callers
// share the parsed entries and must not mutate them.
func builtinCatalog() (types.CatalogFile, error) {
	builtinOnce.Do(func() {
		builtinParsed, builtinErr = parseCatalog(builtinCatalogName, builtinCatalogData)
	})
	return builtinParsed, builtinErr
}
