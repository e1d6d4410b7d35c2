package highlight

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Token is a classified half-open span [StartColumn, EndColumn) of a line.
type Token struct {
	StartColumn int
	EndColumn   int

	// Scopes are ordered outermost first.
	Scopes []string
}

// Contains reports whether column falls inside the token.
func (t Token) Contains(column int) bool {
	return column >= t.StartColumn && column < t.EndColumn
}

// Width returns the token length in bytes.
func (t Token) Width() int {
	return t.EndColumn - t.StartColumn
}

// Scope returns the innermost scope, or "" if the token has none.
func (t Token) Scope() string {
	if len(t.Scopes) == 0 {
		return ""
	}
	return t.Scopes[len(t.Scopes)-1]
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("[%d,%d) %s", t.StartColumn, t.EndColumn, strings.Join(t.Scopes, " "))
}

// LineResult is the output of tokenizing one line.
type LineResult struct {
	Tokens   []Token
	EndState State
}

// TokenAt returns the token covering column. When several tokens contain the
// column the one with the lowest start wins. When none does, the last token
// is returned. It returns false only when tokens is empty.
func TokenAt(tokens []Token, column int) (Token, bool) {
	if len(tokens) == 0 {
		return Token{}, false
	}

	best := -1
	for i, tok := range tokens {
		if !tok.Contains(column) {
			continue
		}
		if best < 0 || tok.StartColumn < tokens[best].StartColumn {
			best = i
		}
	}
	if best < 0 {
		return tokens[len(tokens)-1], true
	}
	return tokens[best], true
}

// Normalize clamps tokens onto a line of length lineLen, drops empty and
// overlapping spans, orders them by start, and fills uncovered stretches with
// root-scope tokens. An empty line yields one zero-width root token.
func Normalize(tokens []Token, lineLen int, root string) []Token {
	if lineLen == 0 {
		return []Token{{Scopes: []string{root}}}
	}

	clamped := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		tok.StartColumn = max(0, min(tok.StartColumn, lineLen))
		tok.EndColumn = max(0, min(tok.EndColumn, lineLen))
		if tok.EndColumn <= tok.StartColumn {
			continue
		}
		clamped = append(clamped, tok)
	}
	slices.SortStableFunc(clamped, func(a, b Token) int {
		return cmp.Compare(a.StartColumn, b.StartColumn)
	})

	out := make([]Token, 0, len(clamped)+1)
	pos := 0
	for _, tok := range clamped {
		if tok.StartColumn < pos {
			continue
		}
		if tok.StartColumn > pos {
			out = append(out, Token{StartColumn: pos, EndColumn: tok.StartColumn, Scopes: []string{root}})
		}
		out = append(out, tok)
		pos = tok.EndColumn
	}
	if pos < lineLen {
		out = append(out, Token{StartColumn: pos, EndColumn: lineLen, Scopes: []string{root}})
	}
	return out
}
