package ports

import "multiparty-params/internal/types"

type OutputReaderPort interface {
	ReadBundle(path string) (types.Bundle, error)
	ReadDiagnosticsReport(path string) ([]types.Diagnostic, error)
}
