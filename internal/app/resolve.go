package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"multiparty-params/internal/types"
)

// Resolve validates the declaration and writes its artifacts. The
// diagnostics report is always written; the bundle and party
// configurations only when the resolution is valid.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	jobPath := strings.TrimSpace(req.JobPath)
	if jobPath == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("job declaration path is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	format := req.Format
	if format == "" {
		format = types.OutputFormatYAML
	}
	if format != types.OutputFormatYAML && format != types.OutputFormatJSON {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported output format: " + string(format))
	}

	resolution, elapsed, err := s.resolve(ctx, jobPath, req.Catalog, req.Policy)
	if err != nil {
		return ResolveResult{}, err
	}
	if err := s.recordMetrics(req.MetricsFile, resolution, elapsed); err != nil {
		return ResolveResult{}, err
	}

	output := s.Output(outputDir, format)
	if err := output.WriteDiagnosticsReport(resolution.Diagnostics); err != nil {
		return ResolveResult{}, err
	}
	result := ResolveResult{
		Resolution: resolution,
		OutputDir:  outputDir,
		Elapsed:    elapsed,
	}
	if !resolution.Valid {
		return result, invalidResolutionError(resolution)
	}
	if err := output.WriteBundle(resolution); err != nil {
		return ResolveResult{}, err
	}
	if err := output.WritePartyConfigs(resolution); err != nil {
		return ResolveResult{}, err
	}
	result.BundlePath = bundlePath(outputDir, format)
	log.Ctx(ctx).Info().
		Str("output", outputDir).
		Str("format", string(format)).
		Msg("resolution artifacts written")
	return result, nil
}
