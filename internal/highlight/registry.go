package highlight

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/go-enry/go-enry/v2"
)

// Grammar is a registry entry binding a tokenizer to the names it is known by.
type Grammar struct {
	Language   string
	ScopeName  string
	Extensions []string
	Tokenizer  Tokenizer

	// Source is the file a scripted grammar was loaded from, if any.
	Source string
}

// Registry manages available grammars.
type Registry struct {
	mu sync.RWMutex

	byLanguage  map[string]Grammar
	byScope     map[string]string
	byExtension map[string]string
}

// NewRegistry creates an empty grammar registry.
func NewRegistry() *Registry {
	return &Registry{
		byLanguage:  make(map[string]Grammar),
		byScope:     make(map[string]string),
		byExtension: make(map[string]string),
	}
}

// DefaultRegistry returns a registry holding the built-in grammars.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range Builtins() {
		r.Register(t.Grammar())
	}
	return r
}

// Register adds g, replacing any grammar registered for the same language.
func (r *Registry) Register(g Grammar) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byLanguage[g.Language]; ok {
		r.unindex(old)
	}
	r.byLanguage[g.Language] = g
	if g.ScopeName != "" {
		r.byScope[g.ScopeName] = g.Language
	}
	for _, ext := range g.Extensions {
		r.byExtension[normalizeExt(ext)] = g.Language
	}
}

func (r *Registry) unindex(g Grammar) {
	if r.byScope[g.ScopeName] == g.Language {
		delete(r.byScope, g.ScopeName)
	}
	for _, ext := range g.Extensions {
		ext = normalizeExt(ext)
		if r.byExtension[ext] == g.Language {
			delete(r.byExtension, ext)
		}
	}
}

// ByLanguage returns the grammar for a language id.
func (r *Registry) ByLanguage(language string) (Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byLanguage[language]
	return g, ok
}

// ByScopeName returns the grammar whose root scope is scope.
func (r *Registry) ByScopeName(scope string) (Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.byScope[scope]
	if !ok {
		return Grammar{}, false
	}
	return r.byLanguage[lang], true
}

// ByExtension returns the grammar for a file extension, with or without the
// leading dot.
func (r *Registry) ByExtension(ext string) (Grammar, bool) {
	if ext == "" {
		return Grammar{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.byExtension[normalizeExt(ext)]
	if !ok {
		return Grammar{}, false
	}
	return r.byLanguage[lang], true
}

// Lookup resolves id as a language id, then as a scope name.
func (r *Registry) Lookup(id string) (Grammar, error) {
	if g, ok := r.ByLanguage(id); ok {
		return g, nil
	}
	if g, ok := r.ByScopeName(id); ok {
		return g, nil
	}
	return Grammar{}, fmt.Errorf("%w: %q", ErrGrammarNotFound, id)
}

// ForFile picks a grammar for a file. The extension is tried first; failing
// that the language is detected from the file name and content.
func (r *Registry) ForFile(path string, content []byte) (Grammar, error) {
	if g, ok := r.ByExtension(filepath.Ext(path)); ok {
		return g, nil
	}

	if lang := DetectLanguage(path, content); lang != "" {
		if g, ok := r.ByLanguage(lang); ok {
			return g, nil
		}
	}
	return Grammar{}, fmt.Errorf("%w: no grammar for %s", ErrGrammarNotFound, path)
}

// Grammars returns all registered grammars ordered by language.
func (r *Registry) Grammars() []Grammar {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grammars := make([]Grammar, 0, len(r.byLanguage))
	for _, g := range r.byLanguage {
		grammars = append(grammars, g)
	}
	slices.SortFunc(grammars, func(a, b Grammar) int {
		return strings.Compare(a.Language, b.Language)
	})
	return grammars
}

// Languages returns all registered language ids, sorted.
func (r *Registry) Languages() []string {
	grammars := r.Grammars()
	langs := make([]string, len(grammars))
	for i, g := range grammars {
		langs[i] = g.Language
	}
	return langs
}

// languageAliases maps detected language names onto registered language ids.
var languageAliases = map[string]string{
	"typescript": "javascript",
	"tsx":        "javascript",
	"jsx":        "javascript",
}

// DetectLanguage returns a lower-case language id for a file, or "" if none
// could be determined.
func DetectLanguage(path string, content []byte) string {
	lang := enry.GetLanguage(filepath.Base(path), content)
	if lang == "" {
		return ""
	}
	lang = strings.ToLower(lang)
	if alias, ok := languageAliases[lang]; ok {
		return alias
	}
	return lang
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
