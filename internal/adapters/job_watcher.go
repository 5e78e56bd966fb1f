package adapters

import (
	"context"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"multiparty-params/internal/ports"
)

const defaultWatchDebounce = 300 * time.Millisecond

// FileWatcher reports changes to individual files. It watches the parent
// directories so editors that replace files by rename are still seen.
type FileWatcher struct {
	Debounce time.Duration
}

func NewFileWatcher() FileWatcher {
	return FileWatcher{Debounce: defaultWatchDebounce}
}

// Watch blocks until ctx is done. onChange runs on the calling goroutine,
// once per burst of events for a file.
func (w FileWatcher) Watch(ctx context.Context, paths []string, onChange func(path string)) error {
	if len(paths) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no files to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create file watcher").
			WithCause(err)
	}
	defer watcher.Close()

	targets := map[string]string{}
	dirs := map[string]struct{}{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid watch path: " + path).
				WithCause(err)
		}
		targets[abs] = path
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to watch directory: " + dir).
				WithCause(err)
		}
	}
	log.Ctx(ctx).Info().Int("files", len(targets)).Msg("watching for changes")

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	pending := map[string]time.Time{}
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			original, watched := targets[abs]
			if !watched {
				continue
			}
			log.Ctx(ctx).Debug().
				Str("file", original).
				Str("op", event.Op.String()).
				Msg("file changed")
			pending[original] = time.Now().Add(debounce)
		case <-ticker.C:
			now := time.Now()
			for path, due := range pending {
				if now.Before(due) {
					continue
				}
				delete(pending, path)
				onChange(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Ctx(ctx).Error().Err(err).Msg("watcher error")
		}
	}
}

var _ ports.WatchPort = FileWatcher{}
