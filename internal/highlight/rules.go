package highlight

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// rule is a single-line pattern anchored at the scan position.
type rule struct {
	pattern *regexp.Regexp
	scope   string
}

// region is a construct delimited by begin and end markers that may span
// several lines. Nested regions count their own begin markers.
type region struct {
	name   string
	begin  string
	end    string
	escape byte
	scope  string
	nested bool
}

// RuleTokenizer is a regex and delimiter based tokenizer.
//
// Each line is scanned left to right. At every position the tokenizer tries,
// in order: the region begin markers, the single-line rules, and finally an
// identifier that may be a keyword. Everything not matched is covered by
// tokens carrying only the root scope, so the tokens of a line always cover
// it completely.
type RuleTokenizer struct {
	language   string
	scopeName  string
	extensions []string
	rules      []rule
	keywords   map[string]string
	regions    []region
}

// NewRuleTokenizer creates an empty tokenizer for language. The root scope is
// "source.<language>".
func NewRuleTokenizer(language string, extensions ...string) *RuleTokenizer {
	return &RuleTokenizer{
		language:   language,
		scopeName:  "source." + language,
		extensions: extensions,
		keywords:   make(map[string]string),
	}
}

// WithScopeName overrides the root scope.
func (t *RuleTokenizer) WithScopeName(scope string) *RuleTokenizer {
	t.scopeName = scope
	return t
}

// AddRule adds a single-line pattern. The scope is suffixed with the language,
// so "comment.line" becomes "comment.line.go".
func (t *RuleTokenizer) AddRule(pattern, scope string) *RuleTokenizer {
	t.rules = append(t.rules, rule{
		pattern: regexp.MustCompile(`^(?:` + pattern + `)`),
		scope:   t.qualify(scope),
	})
	return t
}

// AddKeywords assigns scope to each keyword.
func (t *RuleTokenizer) AddKeywords(scope string, keywords ...string) *RuleTokenizer {
	scope = t.qualify(scope)
	for _, kw := range keywords {
		t.keywords[kw] = scope
	}
	return t
}

// AddRegion adds a multi-line construct. Regions are tried in the order they
// were added, so longer begin markers sharing a prefix must come first.
func (t *RuleTokenizer) AddRegion(name, begin, end, scope string) *RuleTokenizer {
	t.regions = append(t.regions, region{name: name, begin: begin, end: end, scope: t.qualify(scope)})
	return t
}

// AddEscapedRegion adds a multi-line construct in which escape hides the
// following byte from the end marker.
func (t *RuleTokenizer) AddEscapedRegion(name, begin, end string, escape byte, scope string) *RuleTokenizer {
	t.regions = append(t.regions, region{name: name, begin: begin, end: end, escape: escape, scope: t.qualify(scope)})
	return t
}

// AddNestedRegion adds a multi-line construct whose begin marker nests.
func (t *RuleTokenizer) AddNestedRegion(name, begin, end, scope string) *RuleTokenizer {
	t.regions = append(t.regions, region{name: name, begin: begin, end: end, scope: t.qualify(scope), nested: true})
	return t
}

// Language returns the language id.
func (t *RuleTokenizer) Language() string {
	return t.language
}

// Extensions returns the file extensions the tokenizer was declared with.
func (t *RuleTokenizer) Extensions() []string {
	return t.extensions
}

// ScopeName implements Tokenizer.
func (t *RuleTokenizer) ScopeName() string {
	return t.scopeName
}

// Grammar returns a registry entry for the tokenizer.
func (t *RuleTokenizer) Grammar() Grammar {
	return Grammar{
		Language:   t.language,
		ScopeName:  t.scopeName,
		Extensions: t.extensions,
		Tokenizer:  t,
	}
}

func (t *RuleTokenizer) qualify(scope string) string {
	return scope + "." + t.language
}

func (t *RuleTokenizer) region(name string) (region, bool) {
	for _, r := range t.regions {
		if r.name == name {
			return r, true
		}
	}
	return region{}, false
}

// TokenizeLine implements Tokenizer.
func (t *RuleTokenizer) TokenizeLine(line string, prior State) LineResult {
	s := &lineScanner{t: t, line: line, state: asStack(prior), gap: -1}

	// A frame this tokenizer does not know cannot be closed; drop it.
	if top, ok := s.state.Top(); ok {
		if _, known := t.region(top); !known {
			s.state = nil
		}
	}

	if line == "" {
		var scope string
		if top, ok := s.state.Top(); ok {
			r, _ := t.region(top)
			scope = r.scope
		}
		s.tokens = append(s.tokens, Token{Scopes: s.scopes(scope)})
		return LineResult{Tokens: s.tokens, EndState: s.state.AsState()}
	}

	for s.pos < len(line) {
		if top, ok := s.state.Top(); ok {
			r, _ := t.region(top)
			s.scanRegion(r, s.pos)
			continue
		}
		s.scanNormal()
	}
	s.flushGap()

	return LineResult{Tokens: s.tokens, EndState: s.state.AsState()}
}

// lineScanner holds the progress of one TokenizeLine call.
type lineScanner struct {
	t      *RuleTokenizer
	line   string
	pos    int
	state  *StackState
	tokens []Token
	gap    int
}

func (s *lineScanner) scopes(inner string) []string {
	scopes := []string{s.t.scopeName}
	if inner != "" {
		scopes = append(scopes, inner)
	}
	return scopes
}

func (s *lineScanner) emit(start, end int, scope string) {
	s.flushGap()
	s.tokens = append(s.tokens, Token{StartColumn: start, EndColumn: end, Scopes: s.scopes(scope)})
}

func (s *lineScanner) flushGap() {
	if s.gap < 0 {
		return
	}
	s.tokens = append(s.tokens, Token{StartColumn: s.gap, EndColumn: s.pos, Scopes: s.scopes("")})
	s.gap = -1
}

func (s *lineScanner) scanNormal() {
	rest := s.line[s.pos:]

	for _, r := range s.t.regions {
		if strings.HasPrefix(rest, r.begin) {
			start := s.pos
			s.flushGap()
			s.state = s.state.Push(r.name)
			s.pos += len(r.begin)
			s.scanRegion(r, start)
			return
		}
	}

	for _, r := range s.t.rules {
		if loc := r.pattern.FindStringIndex(rest); loc != nil && loc[1] > 0 {
			start := s.pos
			s.flushGap()
			s.pos += loc[1]
			s.emit(start, s.pos, r.scope)
			return
		}
	}

	if c, size := utf8.DecodeRuneInString(rest); isIdentStart(c) {
		end := s.pos + size
		for end < len(s.line) {
			c, size = utf8.DecodeRuneInString(s.line[end:])
			if !isIdentPart(c) {
				break
			}
			end += size
		}
		if scope, ok := s.t.keywords[s.line[s.pos:end]]; ok {
			start := s.pos
			s.flushGap()
			s.pos = end
			s.emit(start, end, scope)
			return
		}
		s.openGap()
		s.pos = end
		return
	}

	s.openGap()
	_, size := utf8.DecodeRuneInString(rest)
	s.pos += size
}

func (s *lineScanner) openGap() {
	if s.gap < 0 {
		s.gap = s.pos
	}
}

// scanRegion consumes the current region from s.pos until it closes or the
// line ends, emitting one token starting at start.
func (s *lineScanner) scanRegion(r region, start int) {
	for s.pos < len(s.line) {
		rest := s.line[s.pos:]
		if r.escape != 0 && rest[0] == r.escape {
			s.pos = min(s.pos+2, len(s.line))
			continue
		}
		if r.nested && strings.HasPrefix(rest, r.begin) {
			s.state = s.state.Push(r.name)
			s.pos += len(r.begin)
			continue
		}
		if strings.HasPrefix(rest, r.end) {
			s.pos += len(r.end)
			s.state = s.state.Pop()
			if top, ok := s.state.Top(); !ok || top != r.name {
				break
			}
			continue
		}
		s.pos++
	}
	s.emit(start, s.pos, r.scope)
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
