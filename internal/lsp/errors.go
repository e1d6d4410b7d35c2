package lsp

import "errors"

var (
	// ErrInvalidMessage is returned for input that is not a well-formed
	// didChange notification.
	ErrInvalidMessage = errors.New("invalid didChange notification")

	// ErrUnexpectedMethod is returned for JSON-RPC messages of another method.
	ErrUnexpectedMethod = errors.New("unexpected method")
)
