package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"multiparty-params/internal/core"
	"multiparty-params/internal/policies"
	"multiparty-params/internal/ports"
	"multiparty-params/internal/telemetry"
	"multiparty-params/internal/types"
)

func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	jobPath := strings.TrimSpace(req.JobPath)
	if jobPath == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("job declaration path is required")
	}
	resolution, elapsed, err := s.resolve(ctx, jobPath, req.Catalog, req.Policy)
	if err != nil {
		return ValidateResult{}, err
	}
	if err := s.recordMetrics(req.MetricsFile, resolution, elapsed); err != nil {
		return ValidateResult{}, err
	}
	result := ValidateResult{Resolution: resolution, Elapsed: elapsed}
	if !resolution.Valid {
		return result, invalidResolutionError(resolution)
	}
	return result, nil
}

// resolve loads the declaration and the catalog, then runs the resolver.
func (s Service) resolve(ctx context.Context, jobPath string, catalogOpts CatalogOptions, policy policies.ResolutionPolicy) (types.ResolutionResult, time.Duration, error) {
	ctx, span := telemetry.StartSpan(ctx, "app.load", attribute.String("job.path", jobPath))
	job, err := s.JobLoader.LoadJob(jobPath)
	if err != nil {
		span.End()
		return types.ResolutionResult{}, 0, err
	}
	catalog, err := s.loadCatalog(catalogOpts)
	span.End()
	if err != nil {
		return types.ResolutionResult{}, 0, err
	}

	clock := s.clock()
	started := clock()
	resolution, err := core.NewResolverCore(catalog, policy).Resolve(ctx, job)
	if err != nil {
		return types.ResolutionResult{}, 0, err
	}
	elapsed := clock().Sub(started)
	log.Ctx(ctx).Info().
		Str("job", jobPath).
		Str("resolution", resolution.ID).
		Bool("valid", resolution.Valid).
		Int("parties", len(resolution.Parties)).
		Int("errors", len(resolution.Errors())).
		Int("warnings", len(resolution.Warnings())).
		Dur("elapsed", elapsed).
		Msg("job resolved")
	return resolution, elapsed, nil
}

func (s Service) loadCatalog(opts CatalogOptions) (ports.CatalogPort, error) {
	if s.CatalogLoader == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("catalog loader is not configured")
	}
	loader := s.CatalogLoader()
	if !opts.NoBuiltin {
		if err := loader.LoadBuiltin(); err != nil {
			return nil, err
		}
	}
	for _, path := range opts.Paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := loader.LoadCatalog(path); err != nil {
			return nil, err
		}
	}
	return loader.Freeze(), nil
}

func (s Service) recordMetrics(textfile string, resolution types.ResolutionResult, elapsed time.Duration) error {
	if s.Metrics == nil || strings.TrimSpace(textfile) == "" {
		return nil
	}
	metrics := s.Metrics(textfile)
	metrics.ObserveResolution(resolution, elapsed)
	return metrics.Flush()
}

func (s Service) clock() func() time.Time {
	if s.Clock == nil {
		return time.Now
	}
	return s.Clock
}

// invalidResolutionError summarizes a rejected resolution. Topology
// failures block every party and map to a failed precondition; everything
// else is an invalid argument of the declaration.
func invalidResolutionError(resolution types.ResolutionResult) error {
	errs := resolution.Errors()
	code := errbuilder.CodeInvalidArgument
	for _, diag := range errs {
		if diag.Stage == types.StageTopology {
			code = errbuilder.CodeFailedPrecondition
			break
		}
	}
	return errbuilder.New().
		WithCode(code).
		WithMsg(fmt.Sprintf("resolution %s is invalid: %d error(s)", resolution.ID, len(errs)))
}
