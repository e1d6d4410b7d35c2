package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/linestate/internal/highlight"
)

// Status is the progress of a load.
type Status uint8

const (
	// StatusPending means the load has not finished.
	StatusPending Status = iota

	// StatusReady means a tokenizer is available.
	StatusReady

	// StatusUnavailable means the load failed. This is terminal.
	StatusUnavailable
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// DoneFunc is called once when a Handle settles. tok is nil when err is not.
type DoneFunc func(tok highlight.Tokenizer, err error)

// Handle is the eventual result of loading a tokenizer.
type Handle struct {
	mu        sync.Mutex
	status    Status
	tokenizer highlight.Tokenizer
	err       error
	done      chan struct{}
	callbacks []DoneFunc
}

// NewHandle returns a pending handle. Settle it with Resolve.
func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Ready returns a handle already resolved to tok.
func Ready(tok highlight.Tokenizer) *Handle {
	h := NewHandle()
	h.Resolve(tok, nil)
	return h
}

// Unavailable returns a handle that has already failed with err.
func Unavailable(err error) *Handle {
	h := NewHandle()
	h.Resolve(nil, err)
	return h
}

// Load runs fn on a new goroutine and settles the returned handle with its
// result. A panic in fn settles the handle as unavailable.
func Load(ctx context.Context, fn func(ctx context.Context) (highlight.Tokenizer, error)) *Handle {
	h := NewHandle()
	go func() {
		var (
			tok highlight.Tokenizer
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				tok, err = nil, fmt.Errorf("%w: load panicked: %v", ErrUnavailable, r)
			}
			h.Resolve(tok, err)
		}()
		tok, err = fn(ctx)
	}()
	return h
}

// Resolve settles the handle. Only the first call has an effect; it reports
// whether this call settled the handle. A nil tokenizer with a nil error
// settles as unavailable.
func (h *Handle) Resolve(tok highlight.Tokenizer, err error) bool {
	h.mu.Lock()
	if h.status != StatusPending {
		h.mu.Unlock()
		return false
	}

	switch {
	case err != nil:
		h.status, h.err = StatusUnavailable, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case tok == nil:
		h.status, h.err = StatusUnavailable, ErrUnavailable
	default:
		h.status, h.tokenizer = StatusReady, tok
	}
	callbacks := h.callbacks
	h.callbacks = nil
	tok, err = h.tokenizer, h.err
	close(h.done)
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(tok, err)
	}
	return true
}

// Status returns the current status.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Tokenizer returns the tokenizer if the handle is ready. It never blocks.
func (h *Handle) Tokenizer() (highlight.Tokenizer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tokenizer, h.status == StatusReady
}

// Err returns the failure of an unavailable handle.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Done is closed when the handle settles.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the handle settles or ctx is done.
func (h *Handle) Wait(ctx context.Context) (highlight.Tokenizer, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tokenizer, h.err
}

// OnDone registers fn to run when the handle settles. If it already has, fn
// runs immediately on the calling goroutine; otherwise it runs on the
// goroutine that settles the handle.
func (h *Handle) OnDone(fn DoneFunc) {
	h.mu.Lock()
	if h.status == StatusPending {
		h.callbacks = append(h.callbacks, fn)
		h.mu.Unlock()
		return
	}
	tok, err := h.tokenizer, h.err
	h.mu.Unlock()
	fn(tok, err)
}
