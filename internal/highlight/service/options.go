package service

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/linestate/internal/highlight"
	"github.com/dshills/linestate/internal/highlight/loader"
)

// Default memo settings.
const (
	DefaultMemoTTL     = 30 * time.Second
	DefaultMemoCleanup = time.Minute
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRegistry replaces the built-in grammar registry.
func WithRegistry(r *highlight.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithScripts adds grammars implemented by Lua scripts. A script grammar
// takes precedence over a built-in grammar of the same language.
func WithScripts(grammars ...loader.ScriptGrammar) Option {
	return func(s *Service) {
		for _, g := range grammars {
			s.scripts[g.Language] = g
		}
	}
}

// WithWatch reloads grammar scripts when their files change.
func WithWatch(enabled bool) Option {
	return func(s *Service) {
		s.watch = enabled
	}
}

// WithMemo sets how long memoized line tokens live and how often expired
// entries are purged.
func WithMemo(ttl, cleanup time.Duration) Option {
	return func(s *Service) {
		s.memoTTL = ttl
		s.memoCleanup = cleanup
	}
}
