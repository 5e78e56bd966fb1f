package app

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"multiparty-params/internal/adapters"
	"multiparty-params/internal/types"
)

// Inspect summarizes the artifacts of an earlier resolve run. An invalid
// run leaves no bundle; its diagnostics are still reported.
func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	diagnostics, err := s.OutputReader.ReadDiagnosticsReport(filepath.Join(outputDir, adapters.DiagnosticsReportFile))
	if err != nil {
		return InspectResult{}, err
	}
	result := InspectResult{Diagnostics: diagnostics}
	for _, diag := range diagnostics {
		if diag.IsError() {
			result.Errors++
		} else {
			result.Warnings++
		}
	}

	path := existingBundle(outputDir)
	if path == "" {
		return result, nil
	}
	bundle, err := s.OutputReader.ReadBundle(path)
	if err != nil {
		return InspectResult{}, err
	}
	result.BundlePath = path
	role := strings.TrimSpace(req.Role)
	if role != "" {
		if _, ok := bundle[role]; !ok {
			return InspectResult{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("role not present in bundle: " + role)
		}
	}
	result.Parties = summarizeBundle(bundle, role)
	return result, nil
}

func summarizeBundle(bundle types.Bundle, onlyRole string) []InspectPartySummary {
	var summaries []InspectPartySummary
	for _, role := range sortedKeys(bundle) {
		if onlyRole != "" && role != onlyRole {
			continue
		}
		parties := bundle[role]
		ids := make([]types.PartyID, 0, len(parties))
		for id := range parties {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			summaries = append(summaries, InspectPartySummary{
				Role:       role,
				PartyID:    id,
				Components: sortedKeys(parties[id]),
			})
		}
	}
	return summaries
}

func existingBundle(outputDir string) string {
	for _, format := range []types.OutputFormat{types.OutputFormatYAML, types.OutputFormatJSON} {
		path := bundlePath(outputDir, format)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func bundlePath(outputDir string, format types.OutputFormat) string {
	return adapters.NewOutputFileAdapter(outputDir, format).BundlePath()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
