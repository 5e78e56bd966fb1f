package adapters

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"multiparty-params/internal/ports"
	"multiparty-params/internal/types"
)

const (
	BundleFileBase        = "bundle"
	DiagnosticsReportFile = "diagnostics.report"
)

// OutputFileAdapter writes resolution artifacts below Dir:
//
//	bundle.<ext>               role -> party id -> component -> parameters
//	<role>/<party_id>.<ext>    the configuration handed to one party
//	diagnostics.report         one line per finding
type OutputFileAdapter struct {
	Dir    string
	Format types.OutputFormat
}

func NewOutputFileAdapter(dir string, format types.OutputFormat) OutputFileAdapter {
	if format == "" {
		format = types.OutputFormatYAML
	}
	return OutputFileAdapter{Dir: dir, Format: format}
}

// BundlePath is where WriteBundle puts the bundle.
func (a OutputFileAdapter) BundlePath() string {
	return filepath.Join(a.Dir, BundleFileBase+"."+a.extension())
}

func (a OutputFileAdapter) WriteBundle(result types.ResolutionResult) error {
	if err := requireValid(result); err != nil {
		return err
	}
	path, err := a.ensurePath(BundleFileBase + "." + a.extension())
	if err != nil {
		return err
	}
	return a.writeDocument(path, result.Bundle())
}

func (a OutputFileAdapter) WritePartyConfigs(result types.ResolutionResult) error {
	if err := requireValid(result); err != nil {
		return err
	}
	for _, party := range result.Parties {
		if party.Role != filepath.Base(party.Role) || strings.HasPrefix(party.Role, ".") {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("role name cannot be used as a directory: " + party.Role)
		}
		path, err := a.ensurePath(filepath.Join(party.Role, fmt.Sprintf("%d.%s", party.PartyID, a.extension())))
		if err != nil {
			return err
		}
		config := types.PartyConfig{
			ResolutionID:        result.ID,
			Role:                party.Role,
			PartyID:             party.PartyID,
			Index:               party.Index,
			Initiator:           result.Initiator,
			JobParameters:       party.Job,
			ComponentParameters: party.Components,
		}
		if err := a.writeDocument(path, config); err != nil {
			return err
		}
	}
	return nil
}

// WriteDiagnosticsReport writes one CSV record per finding:
// stage,severity,code,role,party_id,component,field,message. Columns that
// carry user keys are quoted when they contain commas.
func (a OutputFileAdapter) WriteDiagnosticsReport(diagnostics []types.Diagnostic) error {
	path, err := a.ensurePath(DiagnosticsReportFile)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, diag := range diagnostics {
		party := ""
		if diag.PartyID != nil {
			party = fmt.Sprintf("%d", *diag.PartyID)
		}
		record := []string{
			string(diag.Stage),
			string(diag.Severity),
			string(diag.Code),
			diag.Role,
			party,
			diag.Component,
			diag.Field,
			strings.ReplaceAll(diag.Message, "\n", " "),
		}
		if err := writer.Write(record); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode " + path).
				WithCause(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode " + path).
			WithCause(err)
	}
	return writeFile(path, buf.Bytes())
}

func (a OutputFileAdapter) writeDocument(path string, document any) error {
	var data []byte
	switch a.Format {
	case types.OutputFormatJSON:
		encoded, err := json.MarshalIndent(document, "", "  ")
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode " + path).
				WithCause(err)
		}
		data = append(encoded, '\n')
	default:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(document); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode " + path).
				WithCause(err)
		}
		if err := encoder.Close(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode " + path).
				WithCause(err)
		}
		data = buf.Bytes()
	}
	return writeFile(path, data)
}

func (a OutputFileAdapter) extension() string {
	if a.Format == types.OutputFormatJSON {
		return "json"
	}
	return "yaml"
}

func (a OutputFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	path := filepath.Join(a.Dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return path, nil
}

// requireValid refuses to publish parameters of a rejected resolution.
func requireValid(result types.ResolutionResult) error {
	if result.Valid {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("resolution %s is invalid; parameters are not written", result.ID))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + path).
			WithCause(err)
	}
	return nil
}

var _ ports.OutputPort = OutputFileAdapter{}
