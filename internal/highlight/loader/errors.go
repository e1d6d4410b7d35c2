package loader

import "errors"

// Errors returned by loading and watching.
var (
	// ErrUnavailable is returned when a load finishes without a tokenizer.
	ErrUnavailable = errors.New("tokenizer unavailable")

	// ErrWatcherClosed is returned when using a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrPathNotExist is returned when watching a path that does not exist.
	ErrPathNotExist = errors.New("path does not exist")

	// ErrNotWatching is returned when unwatching a path that is not watched.
	ErrNotWatching = errors.New("path is not being watched")
)
