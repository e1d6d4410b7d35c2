package lua

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/linestate/internal/highlight"
	"github.com/dshills/linestate/internal/logging"
)

const iniScript = `
scope_name = "source.ini"

function tokenize(line, state)
  local tokens = {}
  local s, e = string.find(line, "^%[.-%]")
  if s then
    table.insert(tokens, {s - 1, e, "entity.name.section"})
  end
  local c = string.find(line, ";", 1, true)
  if c then
    table.insert(tokens, {start = c - 1, stop = #line, scope = {"comment.line"}})
  end
  local next = state
  if string.find(line, "<<<", 1, true) then next = "heredoc" end
  if string.find(line, ">>>", 1, true) then next = nil end
  return tokens, next
end
`

func newTestTokenizer(t *testing.T, script string, opts ...Option) *Tokenizer {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	tok, err := New(script, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tok.Close() })
	return tok
}

func TestTokenizeLine(t *testing.T) {
	tok := newTestTokenizer(t, iniScript)
	assert.Equal(t, "source.ini", tok.ScopeName())

	res := tok.TokenizeLine("[core] ; x", nil)
	assert.Equal(t, []highlight.Token{
		{StartColumn: 0, EndColumn: 6, Scopes: []string{"source.ini", "entity.name.section"}},
		{StartColumn: 6, EndColumn: 7, Scopes: []string{"source.ini"}},
		{StartColumn: 7, EndColumn: 10, Scopes: []string{"source.ini", "comment.line"}},
	}, res.Tokens)
	assert.Nil(t, res.EndState)
	assert.Zero(t, tok.Failures())
}

func TestTokenizeLineCarriesState(t *testing.T) {
	tok := newTestTokenizer(t, iniScript)

	open := tok.TokenizeLine("a <<<", nil)
	require.NotNil(t, open.EndState)
	assert.True(t, open.EndState.Equal(highlight.NewStackState("heredoc")))

	inside := tok.TokenizeLine("b", open.EndState)
	assert.True(t, highlight.StatesEqual(open.EndState, inside.EndState))

	closed := tok.TokenizeLine(">>>", inside.EndState)
	assert.Nil(t, closed.EndState)
}

func TestTokenizeEmptyLine(t *testing.T) {
	tok := newTestTokenizer(t, iniScript)
	res := tok.TokenizeLine("", nil)
	assert.Equal(t, []highlight.Token{{Scopes: []string{"source.ini"}}}, res.Tokens)
}

func TestTokenizeFailuresDegrade(t *testing.T) {
	tests := []struct {
		name   string
		script string
		opts   []Option
	}{
		{"runtime error", `function tokenize(line, state) error("boom") end`, nil},
		{"tokens not a table", `function tokenize() return 5 end`, nil},
		{"token without columns", `function tokenize() return {{scope = "x"}} end`, nil},
		{"bad state", `function tokenize() return {}, 12 end`, nil},
		{"timeout", `function tokenize() while true do end end`, []Option{WithTimeout(20 * time.Millisecond)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(t, tt.script, tt.opts...)
			prior := highlight.NewStackState("keep")

			res := tok.TokenizeLine("abc", prior)
			assert.Equal(t, []highlight.Token{
				{StartColumn: 0, EndColumn: 3, Scopes: []string{"source.custom"}},
			}, res.Tokens)
			assert.True(t, highlight.StatesEqual(prior, res.EndState))
			assert.Equal(t, int64(1), tok.Failures())
		})
	}
}

func TestTimeoutError(t *testing.T) {
	tok := newTestTokenizer(t, `function tokenize() while true do end end`, WithTimeout(20*time.Millisecond))
	_, err := tok.tokenize("x", nil)
	require.ErrorIs(t, err, ErrExecutionTimeout)
}

func TestNewErrors(t *testing.T) {
	_, err := New("x = 1", WithLogger(logging.Discard()))
	require.ErrorIs(t, err, ErrNoTokenizeFunction)

	_, err = New("function (", WithLogger(logging.Discard()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTokenizeFunction)
}

func TestSandbox(t *testing.T) {
	tok := newTestTokenizer(t, `
function tokenize(line)
  return {{0, #line, type(io) .. type(os) .. type(require) .. type(dofile) .. type(load)}}
end`)

	res := tok.TokenizeLine("x", nil)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, "nilnilnilnilnil", res.Tokens[0].Scope())
}

func TestScopeNameOverride(t *testing.T) {
	tok := newTestTokenizer(t, iniScript, WithScopeName("source.override"))
	assert.Equal(t, "source.override", tok.ScopeName())

	tok = newTestTokenizer(t, `function tokenize() end`, WithLanguage("demo"))
	assert.Equal(t, "source.demo", tok.ScopeName())
	assert.Equal(t, "demo", tok.Language())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function tokenize() return {} end`), 0o600))

	tok, err := LoadFile(path, WithLogger(logging.Discard()))
	require.NoError(t, err)
	defer tok.Close()

	assert.Equal(t, "conf", tok.Language())
	assert.Equal(t, "source.conf", tok.ScopeName())
	assert.Equal(t, path, tok.Source())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.lua"))
	require.Error(t, err)
}

func TestClosedTokenizerDegrades(t *testing.T) {
	tok := newTestTokenizer(t, iniScript)
	require.NoError(t, tok.Close())
	require.NoError(t, tok.Close())

	res := tok.TokenizeLine("[a]", nil)
	assert.Equal(t, []highlight.Token{{StartColumn: 0, EndColumn: 3, Scopes: []string{"source.ini"}}}, res.Tokens)
	assert.Equal(t, int64(1), tok.Failures())

	_, err := tok.tokenize("x", nil)
	require.ErrorIs(t, err, ErrStateClosed)
}
