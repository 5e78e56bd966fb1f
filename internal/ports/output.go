package ports

import "multiparty-params/internal/types"

type OutputPort interface {
	WriteBundle(result types.ResolutionResult) error
	WritePartyConfigs(result types.ResolutionResult) error
	WriteDiagnosticsReport(diagnostics []types.Diagnostic) error
}
