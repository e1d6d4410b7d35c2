package statecache

import "errors"

// Errors returned by controllers.
var (
	// ErrNoTokenizer is returned when an operation needs a tokenizer and none
	// is attached yet.
	ErrNoTokenizer = errors.New("no tokenizer attached")

	// ErrCacheDiverged is returned by Verify when the incrementally maintained
	// cache differs from a full rebuild.
	ErrCacheDiverged = errors.New("state cache diverged from full rebuild")

	// ErrTokenizerPanic wraps a panic raised by a tokenizer during a reparse.
	ErrTokenizerPanic = errors.New("tokenizer panicked")

	// ErrDisposed is returned when using a disposed controller.
	ErrDisposed = errors.New("controller disposed")
)
