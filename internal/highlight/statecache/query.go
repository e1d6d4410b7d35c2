package statecache

import (
	"slices"

	"github.com/dshills/linestate/internal/engine/buffer"
	"github.com/dshills/linestate/internal/highlight"
)

// Scope is the answer to a point query.
type Scope struct {
	// Range is the absolute span of the covering token.
	Range buffer.PointRange

	// Text is the token's text.
	Text string

	// Scopes are ordered outermost first.
	Scopes []string
}

// ScopeAt returns the token covering p. The position is clamped onto the
// document. A position at or past the end of its line resolves to the last
// token of the line. It returns false when no tokenizer is attached or the
// line produced no tokens. The cache is not modified.
func (c *Controller) ScopeAt(p buffer.Point) (Scope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready() {
		return Scope{}, false
	}

	p = c.doc.ValidatePosition(p)
	line := c.doc.LineAt(p.Line)
	res := c.tokenizer.TokenizeLine(line, c.cache.EntryState(p.Line))

	scope, ok := ScopeFromTokens(line, p, res.Tokens)
	if ok {
		c.stats.Queries++
	}
	return scope, ok
}

// ScopeFromTokens resolves the token of line covering p, which must already
// be clamped onto the document. The token span is clamped onto the line.
func ScopeFromTokens(line string, p buffer.Point, tokens []highlight.Token) (Scope, bool) {
	tok, ok := highlight.TokenAt(tokens, p.Column)
	if !ok {
		return Scope{}, false
	}

	start := max(0, min(tok.StartColumn, len(line)))
	end := max(start, min(tok.EndColumn, len(line)))
	return Scope{
		Range: buffer.PointRange{
			Start: buffer.Point{Line: p.Line, Column: start},
			End:   buffer.Point{Line: p.Line, Column: end},
		},
		Text:   line[start:end],
		Scopes: slices.Clone(tok.Scopes),
	}, true
}

// LineTokens tokenizes line i from its cached entering state without
// modifying the cache. version is the document version the cache reflected;
// it lags the document while a change notification is still in flight.
func (c *Controller) LineTokens(i int) (tokens []highlight.Token, version int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready() || i < 0 || i >= c.doc.LineCount() {
		return nil, 0, false
	}
	return c.tokenizer.TokenizeLine(c.doc.LineAt(i), c.cache.EntryState(i)).Tokens, c.version, true
}

// Version returns the document version the cache reflects.
func (c *Controller) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}
