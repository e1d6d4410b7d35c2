package service

import "errors"

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("service closed")

	// ErrDocumentNotAttached is returned for documents that were never
	// attached or have been detached.
	ErrDocumentNotAttached = errors.New("document not attached")

	// ErrNotScripted is returned when reloading a language that has no
	// grammar script.
	ErrNotScripted = errors.New("language has no grammar script")
)
