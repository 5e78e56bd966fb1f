package adapters

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"multiparty-params/internal/ports"
	"multiparty-params/internal/types"
)

type OutputReaderAdapter struct{}

func NewOutputReaderAdapter() OutputReaderAdapter {
	return OutputReaderAdapter{}
}

// ReadBundle loads a bundle written in either output format.
func (a OutputReaderAdapter) ReadBundle(path string) (types.Bundle, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("bundle not found: " + path).
			WithCause(err)
	}
	var raw map[string]map[string]map[string]types.Value
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid bundle format").
			WithCause(err)
	}
	bundle := types.Bundle{}
	for role, parties := range raw {
		byParty := make(map[types.PartyID]map[string]types.Value, len(parties))
		for key, components := range parties {
			id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
			if err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("invalid party id in bundle: " + key).
					WithCause(err)
			}
			if components == nil {
				components = map[string]types.Value{}
			}
			byParty[types.PartyID(id)] = components
		}
		bundle[role] = byParty
	}
	return bundle, nil
}

func (a OutputReaderAdapter) ReadDiagnosticsReport(path string) ([]types.Diagnostic, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("diagnostics.report not found").
			WithCause(err)
	}
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = 8
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid diagnostics.report format").
			WithCause(err)
	}
	var diagnostics []types.Diagnostic
	for _, parts := range records {
		diag := types.Diagnostic{
			Stage:     types.Stage(strings.TrimSpace(parts[0])),
			Severity:  types.Severity(strings.TrimSpace(parts[1])),
			Code:      types.DiagnosticCode(strings.TrimSpace(parts[2])),
			Role:      strings.TrimSpace(parts[3]),
			Component: strings.TrimSpace(parts[5]),
			Field:     strings.TrimSpace(parts[6]),
			Message:   parts[7],
		}
		if party := strings.TrimSpace(parts[4]); party != "" {
			id, err := strconv.ParseInt(party, 10, 64)
			if err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("invalid party id in diagnostics.report: " + party).
					WithCause(err)
			}
			partyID := types.PartyID(id)
			diag.PartyID = &partyID
		}
		diagnostics = append(diagnostics, diag)
	}
	return diagnostics, nil
}

var _ ports.OutputReaderPort = OutputReaderAdapter{}
