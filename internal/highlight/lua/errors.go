package lua

import "errors"

// Errors for Lua tokenizers.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a script call runs too long.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoTokenizeFunction is returned when a script does not define tokenize.
	ErrNoTokenizeFunction = errors.New("script does not define a tokenize function")

	// ErrInvalidResult is returned when tokenize returns malformed values.
	ErrInvalidResult = errors.New("invalid tokenize result")
)
