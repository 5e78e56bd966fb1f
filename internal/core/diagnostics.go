package core

import (
	"sort"

	"multiparty-params/internal/types"
)

func newDiagnostic(stage types.Stage, code types.DiagnosticCode, severity types.Severity, field string, message string) types.Diagnostic {
	return types.Diagnostic{
		Stage:    stage,
		Severity: severity,
		Code:     code,
		Field:    field,
		Message:  message,
	}
}

func hasErrors(diagnostics []types.Diagnostic) bool {
	for _, diag := range diagnostics {
		if diag.IsError() {
			return true
		}
	}
	return false
}

var stageOrder = map[types.Stage]int{
	types.StageDeclaration: 0,
	types.StageTopology:    1,
	types.StageMerge:       2,
	types.StageSchema:      3,
	types.StageValidation:  4,
}

// sortDiagnostics orders findings by stage, then by coordinates, so reports
// are stable across runs regardless of task scheduling.
func sortDiagnostics(diagnostics []types.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		if stageOrder[a.Stage] != stageOrder[b.Stage] {
			return stageOrder[a.Stage] < stageOrder[b.Stage]
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if partyKey(a) != partyKey(b) {
			return partyKey(a) < partyKey(b)
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

func partyKey(diag types.Diagnostic) int64 {
	if diag.PartyID == nil {
		return -1
	}
	return int64(*diag.PartyID)
}
