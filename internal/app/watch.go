package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// Watch validates the declaration once and again after every change to the
// declaration or a catalog layer, until ctx is done.
func (s Service) Watch(ctx context.Context, req WatchRequest) error {
	jobPath := strings.TrimSpace(req.Validate.JobPath)
	if jobPath == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("job declaration path is required")
	}
	if s.Watcher == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("file watcher is not configured")
	}
	report := req.OnResult
	if report == nil {
		report = func(ValidateResult, error) {}
	}

	run := func() {
		report(s.Validate(ctx, req.Validate))
	}
	run()

	paths := []string{jobPath}
	for _, path := range req.Validate.Catalog.Paths {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}
	return s.Watcher.Watch(ctx, paths, func(path string) {
		log.Ctx(ctx).Info().Str("file", path).Msg("revalidating after change")
		run()
	})
}
