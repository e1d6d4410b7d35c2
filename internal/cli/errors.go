package cli

import "errors"

var (
	// ErrNoScope is returned when a position has no token, which happens
	// when no grammar fits the file.
	ErrNoScope = errors.New("no scope at position")

	// ErrVerifyFailed is returned by replay --verify when the incremental
	// state diverges from a full rebuild.
	ErrVerifyFailed = errors.New("verification failed")
)
