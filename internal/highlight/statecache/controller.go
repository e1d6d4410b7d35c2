package statecache

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/linestate/internal/engine/buffer"
	"github.com/dshills/linestate/internal/engine/tracking"
	"github.com/dshills/linestate/internal/highlight"
	"github.com/dshills/linestate/internal/highlight/loader"
	"github.com/dshills/linestate/internal/logging"
)

// Document is the live text a Controller follows.
type Document interface {
	buffer.Lines
	Version() int
	Subscribe(handler buffer.ChangeHandler) *buffer.Subscription
}

// Controller keeps the state cache of one document current.
//
// Change batches arrive synchronously from the document and are processed
// to completion before the document's ApplyChanges returns. A controller
// created before its tokenizer has loaded is inert: it ignores changes and
// answers no queries until the tokenizer arrives, at which point the cache is
// built from scratch.
//
// All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	doc       Document
	sub       *buffer.Subscription
	tokenizer highlight.Tokenizer
	cache     *Cache
	logger    *log.Logger
	name      string
	stats     Stats
	lastBatch BatchStats
	disposed  bool

	// version is the document version the cache reflects.
	version int

	// loaded is closed when the first tokenizer is attached.
	loaded     chan struct{}
	loadedOnce sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithName sets the document name used in log output.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}

// New attaches a controller to doc. If handle is already ready the cache is
// built before New returns; otherwise the controller stays inert until the
// handle settles. A nil handle leaves the controller inert until SetTokenizer.
func New(doc Document, handle *loader.Handle, opts ...Option) *Controller {
	c := &Controller{
		doc:    doc,
		cache:  NewCache(),
		logger: logging.Default(),
		loaded: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithPrefix("statecache")
	if c.name != "" {
		c.logger = c.logger.With(logging.FieldDocument, c.name)
	}

	c.sub = doc.Subscribe(c.handleChange)
	if handle != nil {
		handle.OnDone(c.onLoaded)
	}
	return c
}

func (c *Controller) onLoaded(tok highlight.Tokenizer, err error) {
	if err != nil {
		c.logger.Warn("tokenizer unavailable, highlighting disabled", logging.FieldError, err)
		return
	}
	c.SetTokenizer(tok)
}

func (c *Controller) handleChange(ev buffer.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A cache built after the document changed but before this notification
	// arrived already covers the batch.
	if c.ready() && ev.Version <= c.version {
		return
	}
	c.applyEditBatch(ev.ContentChanges)
	c.version = ev.Version
}

// Ready reports whether a tokenizer is attached.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenizer != nil && !c.disposed
}

// Tokenizer returns the attached tokenizer, or nil.
func (c *Controller) Tokenizer() highlight.Tokenizer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenizer
}

// SetTokenizer replaces the tokenizer and rebuilds the cache. A nil tokenizer
// makes the controller inert.
func (c *Controller) SetTokenizer(tok highlight.Tokenizer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.tokenizer = tok
	c.cache.Reset()
	if tok != nil {
		c.logger.Debug("tokenizer attached", logging.FieldScope, tok.ScopeName())
		c.initialize()
		c.loadedOnce.Do(func() { close(c.loaded) })
	}
}

// Loaded returns a channel that is closed once a tokenizer has been attached
// and the cache built.
func (c *Controller) Loaded() <-chan struct{} {
	return c.loaded
}

// Initialize tokenizes every line from the top, storing each end state. It
// does nothing without a tokenizer.
func (c *Controller) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready() {
		c.initialize()
	}
}

// Refresh discards the cache and rebuilds it. Use it after the tokenizer's
// grammar changed in place.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready() {
		return
	}
	c.cache.Reset()
	c.initialize()
}

// Dispose detaches the controller from its document and releases the cache.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.disposed = true
	c.sub.Unsubscribe()
	c.tokenizer = nil
	c.cache.Reset()
	c.logger.Debug("disposed")
}

func (c *Controller) ready() bool {
	return c.tokenizer != nil && !c.disposed
}

func (c *Controller) initialize() {
	c.version = c.doc.Version()
	n := c.doc.LineCount()
	var state highlight.State
	for i := range n {
		res := c.tokenizer.TokenizeLine(c.doc.LineAt(i), state)
		c.cache.Set(i, res.EndState)
		state = res.EndState
	}
	c.cache.Truncate(n)
	c.stats.Initializations++
	c.stats.LinesTokenized += n
	c.logger.Debug("cache built", logging.FieldLines, n)
}

// RefreshLine tokenizes line i from its cached entering state and stores the
// resulting end state. invalidated is true when no end state was cached for
// the line or the new one differs from it. Without a tokenizer it returns
// nil, false.
func (c *Controller) RefreshLine(i int) (tokens []highlight.Token, invalidated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready() || i < 0 || i >= c.doc.LineCount() {
		return nil, false
	}
	return c.refreshLine(i)
}

func (c *Controller) refreshLine(i int) ([]highlight.Token, bool) {
	res := c.tokenizer.TokenizeLine(c.doc.LineAt(i), c.cache.EntryState(i))
	old, had := c.cache.Get(i)
	invalidated := !had || !highlight.StatesEqual(old, res.EndState)
	c.cache.Set(i, res.EndState)
	c.stats.LinesTokenized++
	return res.Tokens, invalidated
}

// ReparseStats reports the work done by one reparse.
type ReparseStats struct {
	// Requested is the number of lines in the requested range.
	Requested int

	// Cascaded is the number of lines tokenized past the requested range.
	Cascaded int
}

// Add accumulates other into s.
func (s *ReparseStats) Add(other ReparseStats) {
	s.Requested += other.Requested
	s.Cascaded += other.Cascaded
}

// ReparseRange re-tokenizes the lines spanned by r, then keeps going while
// the last line's end state changed. The range is clamped to the document.
// Cascaded never exceeds the number of lines after the range.
func (c *Controller) ReparseRange(r buffer.PointRange) ReparseStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready() {
		return ReparseStats{}
	}
	r = c.doc.ValidateRange(r)
	return c.reparseLines(r.Start.Line, r.End.Line)
}

func (c *Controller) reparseLines(first, last int) ReparseStats {
	var stats ReparseStats

	n := c.doc.LineCount()
	first = max(0, first)
	last = min(last, n-1)

	invalidated := false
	i := first
	for ; i <= last; i++ {
		_, invalidated = c.refreshLine(i)
		stats.Requested++
	}
	for ; invalidated && i < n; i++ {
		_, invalidated = c.refreshLine(i)
		stats.Cascaded++
	}

	c.stats.Cascaded += stats.Cascaded
	c.stats.MaxCascade = max(c.stats.MaxCascade, stats.Cascaded)
	return stats
}

// BatchStats reports the work done for one change batch.
type BatchStats struct {
	ReparseStats

	// Edits is the number of edits applied to the cache.
	Edits int

	// Skipped is the number of malformed edits that were ignored.
	Skipped int
}

// ApplyEditBatch repairs the cache after a batch of edits has been applied to
// the document. Every range refers to the text before the batch. A malformed
// edit, or one whose reparse panics in the tokenizer, is logged and skipped;
// the rest of the batch is still applied.
func (c *Controller) ApplyEditBatch(changes []buffer.ContentChange) BatchStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyEditBatch(changes)
}

type splicedEdit struct {
	change buffer.ContentChange
	delta  tracking.RangeDelta
}

func (c *Controller) applyEditBatch(changes []buffer.ContentChange) BatchStats {
	var stats BatchStats
	if !c.ready() || len(changes) == 0 {
		return stats
	}

	// Bottom-up splicing keeps the pre-batch coordinates of every pending
	// edit valid.
	edits := make([]splicedEdit, 0, len(changes))
	for _, change := range buffer.SortDescending(changes) {
		d, err := tracking.ComputeDelta(change.Range, change.Text)
		if err != nil {
			stats.Skipped++
			c.logger.Warn("skipping malformed edit",
				logging.FieldEdit, change.String(),
				logging.FieldError, err)
			continue
		}
		c.cache.Splice(d.Start.Line, d.OldLines(), d.NewLines())
		edits = append(edits, splicedEdit{change: change, delta: d})
	}

	// Reparse top-down in post-batch coordinates: every edit above shifts the
	// lines of the ones below it.
	offset := 0
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		r := tracking.RebuildRange(e.delta)
		first, last := r.Start.Line+offset, r.End.Line+offset
		offset += e.delta.LinesDelta

		reparsed, err := c.safeReparse(first, last)
		if err != nil {
			stats.Skipped++
			c.logger.Warn("skipping edit, reparse failed",
				logging.FieldEdit, e.change.String(),
				logging.FieldError, err)
			continue
		}
		stats.Add(reparsed)
		stats.Edits++
	}

	c.cache.Truncate(c.doc.LineCount())

	c.lastBatch = stats
	c.stats.Batches++
	c.stats.Edits += stats.Edits
	c.stats.SkippedEdits += stats.Skipped
	c.logger.Debug("batch applied",
		logging.FieldEdits, stats.Edits,
		logging.FieldSkipped, stats.Skipped,
		logging.FieldRequested, stats.Requested,
		logging.FieldCascaded, stats.Cascaded)
	return stats
}

// safeReparse is reparseLines with tokenizer panics turned into errors.
func (c *Controller) safeReparse(first, last int) (stats ReparseStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTokenizerPanic, r)
		}
	}()
	return c.reparseLines(first, last), nil
}

// States returns a copy of the cached end states.
func (c *Controller) States() []highlight.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Snapshot()
}

// CacheLen returns the number of cache entries.
func (c *Controller) CacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Stats returns cumulative counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// LastBatch returns the stats of the most recent batch.
func (c *Controller) LastBatch() BatchStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastBatch
}

// Verify rebuilds the states from scratch without touching the cache and
// compares them with the cached ones.
func (c *Controller) Verify() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if c.tokenizer == nil {
		return ErrNoTokenizer
	}

	n := c.doc.LineCount()
	if c.cache.Len() != n {
		return fmt.Errorf("%w: %d entries for %d lines", ErrCacheDiverged, c.cache.Len(), n)
	}

	var state highlight.State
	for i := range n {
		state = c.tokenizer.TokenizeLine(c.doc.LineAt(i), state).EndState
		cached, ok := c.cache.Get(i)
		if !ok {
			return fmt.Errorf("%w: line %d has no entry", ErrCacheDiverged, i)
		}
		if !highlight.StatesEqual(cached, state) {
			return fmt.Errorf("%w: line %d", ErrCacheDiverged, i)
		}
	}
	return nil
}
