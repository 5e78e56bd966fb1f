package ports

import "context"

// WatchPort reports changes to a set of files until ctx is cancelled.
type WatchPort interface {
	Watch(ctx context.Context, paths []string, onChange func(path string)) error
}
