package service

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"

	"github.com/dshills/linestate/internal/engine/buffer"
	"github.com/dshills/linestate/internal/highlight"
	"github.com/dshills/linestate/internal/highlight/loader"
	"github.com/dshills/linestate/internal/highlight/statecache"
	"github.com/dshills/linestate/internal/logging"
	"github.com/dshills/linestate/internal/lsp"
)

// Service tracks attached documents and answers point queries for them.
// All methods are safe for concurrent use.
type Service struct {
	mu sync.Mutex

	registry *highlight.Registry
	logger   *log.Logger

	memo        *cache.Cache
	memoTTL     time.Duration
	memoCleanup time.Duration

	scripts map[string]loader.ScriptGrammar
	handles map[string]*loader.Handle
	docs    map[buffer.DocumentID]*attachment

	watch   bool
	watcher *loader.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	stats  Stats
	closed bool
}

// attachment is one attached document.
type attachment struct {
	doc      *buffer.Document
	ctrl     *statecache.Controller
	handle   *loader.Handle
	language string

	// generation changes whenever the controller's tokenizer is replaced or
	// its cache rebuilt, retiring memoized tokens.
	generation uint64
}

// Stats are cumulative service counters.
type Stats struct {
	Documents  int
	MemoHits   int
	MemoMisses int
	Reloads    int
}

// New creates a service. Built-in grammars are available unless a registry
// is supplied with WithRegistry.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		logger:      logging.Default(),
		memoTTL:     DefaultMemoTTL,
		memoCleanup: DefaultMemoCleanup,
		scripts:     make(map[string]loader.ScriptGrammar),
		handles:     make(map[string]*loader.Handle),
		docs:        make(map[buffer.DocumentID]*attachment),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = highlight.DefaultRegistry()
	}
	s.logger = s.logger.WithPrefix("service")
	s.memo = cache.New(s.memoTTL, s.memoCleanup)
	s.ctx, s.cancel = context.WithCancel(logging.WithLogger(context.Background(), s.logger))

	if s.watch {
		w, err := loader.NewWatcher(loader.WithWatcherLogger(s.logger))
		if err != nil {
			s.cancel()
			return nil, fmt.Errorf("create grammar watcher: %w", err)
		}
		s.watcher = w
	}
	return s, nil
}

// Registry returns the grammar registry.
func (s *Service) Registry() *highlight.Registry {
	return s.registry
}

// Attach starts tracking doc and returns its controller. Attaching an
// attached document returns the existing controller. When no grammar fits the
// document the controller stays inert and queries answer false.
func (s *Service) Attach(doc *buffer.Document) (*statecache.Controller, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if a, ok := s.docs[doc.ID()]; ok {
		s.mu.Unlock()
		return a.ctrl, nil
	}

	lang := s.resolveLanguage(doc)
	handle, started := s.handleFor(lang)

	name := doc.URI()
	if name == "" {
		name = string(doc.ID())
	}
	ctrl := statecache.New(doc, handle,
		statecache.WithLogger(s.logger.With(logging.FieldLanguage, lang)),
		statecache.WithName(name))
	s.docs[doc.ID()] = &attachment{doc: doc, ctrl: ctrl, handle: handle, language: lang}
	s.stats.Documents++
	s.mu.Unlock()

	// A settled handle runs the callback inline, so it is registered without
	// holding the lock.
	if started != nil {
		handle.OnDone(s.scriptLoaded(handle, *started))
	}

	s.logger.Debug("document attached",
		logging.FieldDocument, name,
		logging.FieldLanguage, lang,
		logging.FieldStatus, handle.Status())
	return ctrl, nil
}

// Detach stops tracking doc and disposes its controller.
func (s *Service) Detach(doc *buffer.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.docs[doc.ID()]
	if !ok {
		return ErrDocumentNotAttached
	}
	a.ctrl.Dispose()
	delete(s.docs, doc.ID())
	return nil
}

// Controller returns the controller of an attached document.
func (s *Service) Controller(doc *buffer.Document) (*statecache.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.docs[doc.ID()]
	if !ok {
		return nil, false
	}
	return a.ctrl, true
}

// Language returns the language an attached document was resolved to, or ""
// when no grammar fits it.
func (s *Service) Language(doc *buffer.Document) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.docs[doc.ID()]
	if !ok {
		return "", false
	}
	return a.language, true
}

// Wait blocks until the tokenizer of doc is in use, its load failed, or ctx
// is done.
func (s *Service) Wait(ctx context.Context, doc *buffer.Document) error {
	s.mu.Lock()
	a, ok := s.docs[doc.ID()]
	s.mu.Unlock()
	if !ok {
		return ErrDocumentNotAttached
	}

	select {
	case <-a.ctrl.Loaded():
		return nil
	case <-a.handle.Done():
		if err := a.handle.Err(); err != nil {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	// The handle settled; the controller switches over right after.
	select {
	case <-a.ctrl.Loaded():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ScopeAt returns the token covering p in doc. It returns false when the
// document is not attached or its tokenizer is not available.
func (s *Service) ScopeAt(doc *buffer.Document, p buffer.Point) (statecache.Scope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.docs[doc.ID()]
	if !ok || s.closed {
		return statecache.Scope{}, false
	}

	p = doc.ValidatePosition(p)
	version := doc.Version()
	key := memoKey(doc.ID(), version, a.generation, p.Line)

	var tokens []highlight.Token
	if v, found := s.memo.Get(key); found {
		tokens = v.([]highlight.Token)
		s.stats.MemoHits++
	} else {
		var cached int
		tokens, cached, ok = a.ctrl.LineTokens(p.Line)
		if !ok {
			return statecache.Scope{}, false
		}
		// Tokens computed while a change notification is still in flight
		// come from the previous cache and must not be stored under the new
		// version.
		if cached == version {
			s.memo.SetDefault(key, tokens)
		}
		s.stats.MemoMisses++
	}
	return statecache.ScopeFromTokens(doc.LineAt(p.Line), p, tokens)
}

// Refresh rebuilds the cache of every document of language and returns how
// many were rebuilt.
func (s *Service) Refresh(language string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, a := range s.docs {
		if a.language != language {
			continue
		}
		a.ctrl.Refresh()
		a.generation++
		n++
	}
	s.logger.Debug("language refreshed", logging.FieldLanguage, language, logging.FieldLines, n)
	return n
}

// Reload loads the grammar script of language again and switches every
// document of that language to the new tokenizer. On failure the previous
// tokenizer stays in use.
func (s *Service) Reload(language string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	g, ok := s.scripts[language]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotScripted, language)
	}

	tok, err := g.Open(s.logger)
	if err != nil {
		s.logger.Warn("grammar reload failed, keeping previous version",
			logging.FieldLanguage, language,
			logging.FieldPath, g.Script,
			logging.FieldError, err)
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = tok.Close()
		return ErrClosed
	}

	var old highlight.Tokenizer
	pending := s.handles[language]
	if pending != nil {
		old, _ = pending.Tokenizer()
	}
	s.handles[language] = loader.Ready(tok)
	s.registry.Register(g.Grammar(tok))

	for _, a := range s.docs {
		if a.language != language {
			continue
		}
		a.ctrl.SetTokenizer(tok)
		a.generation++
	}
	s.stats.Reloads++
	s.mu.Unlock()

	// A load still in flight is settled with the new tokenizer so its
	// eventual result is discarded. Callbacks run inline, outside the lock.
	if pending != nil && !pending.Resolve(tok, nil) && old == nil {
		// The load finished in the meantime and its callbacks may have
		// switched controllers back to the stale tokenizer.
		old, _ = pending.Tokenizer()
		s.reapply(language, tok)
	}
	if old != nil && old != highlight.Tokenizer(tok) {
		closeTokenizer(old)
	}

	s.logger.Info("grammar reloaded", logging.FieldLanguage, language, logging.FieldScope, tok.ScopeName())
	return nil
}

// reapply switches controllers of language that drifted away from tok.
func (s *Service) reapply(language string, tok highlight.Tokenizer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.docs {
		if a.language == language && a.ctrl.Tokenizer() != tok {
			a.ctrl.SetTokenizer(tok)
			a.generation++
		}
	}
}

// Stats returns cumulative counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.Documents = len(s.docs)
	return stats
}

// Close detaches every document and releases scripted tokenizers.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancel()

	for id, a := range s.docs {
		a.ctrl.Dispose()
		delete(s.docs, id)
	}
	var owned []highlight.Tokenizer
	for lang, h := range s.handles {
		if tok, ok := h.Tokenizer(); ok {
			if _, scripted := s.scripts[lang]; scripted {
				owned = append(owned, tok)
			}
		}
	}
	s.memo.Flush()
	w := s.watcher
	s.mu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	for _, tok := range owned {
		closeTokenizer(tok)
	}
	return err
}

// resolveLanguage picks the language of doc: its language id, then a script
// grammar claiming its extension, then the registry's file detection.
func (s *Service) resolveLanguage(doc *buffer.Document) string {
	if id := doc.LanguageID(); id != "" {
		if _, ok := s.scripts[id]; ok {
			return id
		}
		if g, err := s.registry.Lookup(id); err == nil {
			return g.Language
		}
		return id
	}

	path := lsp.URIToFilePath(lsp.DocumentURI(doc.URI()))
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		for _, lang := range slices.Sorted(maps.Keys(s.scripts)) {
			for _, e := range s.scripts[lang].Extensions {
				if strings.ToLower(e) == ext || "."+strings.ToLower(e) == ext {
					return lang
				}
			}
		}
	}
	if g, err := s.registry.ForFile(path, []byte(doc.Text())); err == nil {
		return g.Language
	}
	return ""
}

// handleFor returns the tokenizer handle of language, starting a script load
// if needed. started is non-nil when a load was started.
func (s *Service) handleFor(language string) (h *loader.Handle, started *loader.ScriptGrammar) {
	if h, ok := s.handles[language]; ok {
		return h, nil
	}

	if g, ok := s.scripts[language]; ok {
		h = loader.LoadScript(s.ctx, g)
		s.handles[language] = h
		return h, &g
	}

	g, ok := s.registry.ByLanguage(language)
	if !ok {
		return loader.Unavailable(fmt.Errorf("%w: %q", highlight.ErrGrammarNotFound, language)), nil
	}
	h = loader.Ready(g.Tokenizer)
	s.handles[language] = h
	return h, nil
}

// scriptLoaded registers a freshly loaded script grammar and starts watching
// its file.
func (s *Service) scriptLoaded(h *loader.Handle, g loader.ScriptGrammar) loader.DoneFunc {
	return func(tok highlight.Tokenizer, err error) {
		if err != nil {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed {
			closeTokenizer(tok)
			return
		}
		if s.handles[g.Language] != h {
			return
		}
		s.registry.Register(g.Grammar(tok))

		if s.watcher != nil && !s.watcher.IsWatching(g.Script) {
			lang := g.Language
			err := s.watcher.Watch(g.Script, func(string) {
				_ = s.Reload(lang)
			})
			if err != nil {
				s.logger.Warn("cannot watch grammar script",
					logging.FieldPath, g.Script,
					logging.FieldError, err)
			}
		}
	}
}

func closeTokenizer(tok highlight.Tokenizer) {
	if c, ok := tok.(io.Closer); ok {
		_ = c.Close()
	}
}

func memoKey(id buffer.DocumentID, version int, generation uint64, line int) string {
	return fmt.Sprintf("%s:%d:%d:%d", id, version, generation, line)
}
