package buffer

import "errors"

// Errors returned by document operations.
var (
	ErrInvalidPoint       = errors.New("invalid point")
	ErrRangeInvalid       = errors.New("invalid range")
	ErrOverlappingChanges = errors.New("content changes overlap")
)
