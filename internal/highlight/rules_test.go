package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type span struct {
	start, end int
	scope      string
}

func spans(tokens []Token) []span {
	out := make([]span, len(tokens))
	for i, tok := range tokens {
		out[i] = span{tok.StartColumn, tok.EndColumn, tok.Scope()}
	}
	return out
}

func TestGoTokenizerSingleLine(t *testing.T) {
	tok := GoTokenizer()

	tests := []struct {
		name string
		line string
		want []span
	}{
		{
			name: "number and comment",
			line: "x := 1 // hi",
			want: []span{
				{0, 5, "source.go"},
				{5, 6, "constant.numeric.go"},
				{6, 7, "source.go"},
				{7, 12, "comment.line.double-slash.go"},
			},
		},
		{
			name: "keyword",
			line: "func main",
			want: []span{
				{0, 4, "storage.type.go"},
				{4, 9, "source.go"},
			},
		},
		{
			name: "string with escaped quote",
			line: `s := "a\"b"`,
			want: []span{
				{0, 5, "source.go"},
				{5, 11, "string.quoted.double.go"},
			},
		},
		{
			name: "digits inside identifier stay identifier",
			line: "x1 0x1F",
			want: []span{
				{0, 3, "source.go"},
				{3, 7, "constant.numeric.hex.go"},
			},
		},
		{
			name: "closed block comment",
			line: "a /* b */ c",
			want: []span{
				{0, 2, "source.go"},
				{2, 9, "comment.block.go"},
				{9, 11, "source.go"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tok.TokenizeLine(tt.line, nil)
			assert.Equal(t, tt.want, spans(res.Tokens))
			assert.Nil(t, res.EndState)
		})
	}
}

func TestGoTokenizerMultiLineComment(t *testing.T) {
	tok := GoTokenizer()

	first := tok.TokenizeLine("a /* b", nil)
	assert.Equal(t, []span{{0, 2, "source.go"}, {2, 6, "comment.block.go"}}, spans(first.Tokens))
	require.NotNil(t, first.EndState)
	assert.True(t, first.EndState.Equal(NewStackState("block-comment")))

	middle := tok.TokenizeLine("still inside", first.EndState)
	assert.Equal(t, []span{{0, 12, "comment.block.go"}}, spans(middle.Tokens))
	assert.True(t, StatesEqual(first.EndState, middle.EndState))

	empty := tok.TokenizeLine("", middle.EndState)
	assert.Equal(t, []span{{0, 0, "comment.block.go"}}, spans(empty.Tokens))

	last := tok.TokenizeLine("c */ d", empty.EndState)
	assert.Equal(t, []span{{0, 4, "comment.block.go"}, {4, 6, "source.go"}}, spans(last.Tokens))
	assert.Nil(t, last.EndState)
}

func TestEmptyLine(t *testing.T) {
	res := GoTokenizer().TokenizeLine("", nil)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, Token{Scopes: []string{"source.go"}}, res.Tokens[0])
	assert.Nil(t, res.EndState)
}

func TestRustNestedComments(t *testing.T) {
	tok := RustTokenizer()

	first := tok.TokenizeLine("/* a /* b */ c", nil)
	assert.Equal(t, []span{{0, 14, "comment.block.rust"}}, spans(first.Tokens))
	assert.True(t, StatesEqual(first.EndState, NewStackState("block-comment")))

	second := tok.TokenizeLine("*/ x", first.EndState)
	assert.Equal(t, []span{{0, 2, "comment.block.rust"}, {2, 4, "source.rust"}}, spans(second.Tokens))
	assert.Nil(t, second.EndState)
}

func TestEscapedRegion(t *testing.T) {
	tok := JavaScriptTokenizer()

	res := tok.TokenizeLine("`a\\`b", nil)
	assert.Equal(t, []span{{0, 5, "string.template.javascript"}}, spans(res.Tokens))
	assert.True(t, StatesEqual(res.EndState, NewStackState("template")))

	res = tok.TokenizeLine("c` + 1", res.EndState)
	assert.Equal(t, []span{
		{0, 2, "string.template.javascript"},
		{2, 5, "source.javascript"},
		{5, 6, "constant.numeric.javascript"},
	}, spans(res.Tokens))
}

func TestPythonDocstring(t *testing.T) {
	tok := PythonTokenizer()

	res := tok.TokenizeLine(`def f(): """doc`, nil)
	require.NotEmpty(t, res.Tokens)
	assert.Equal(t, "storage.type.python", res.Tokens[0].Scope())
	assert.Equal(t, "string.quoted.docstring.python", res.Tokens[len(res.Tokens)-1].Scope())
	assert.True(t, StatesEqual(res.EndState, NewStackState("docstring-double")))
}

func TestMarkdownScopes(t *testing.T) {
	tok := MarkdownTokenizer()
	assert.Equal(t, "text.html.markdown", tok.ScopeName())

	res := tok.TokenizeLine("# Title", nil)
	assert.Equal(t, []span{{0, 7, "markup.heading.markdown"}}, spans(res.Tokens))

	res = tok.TokenizeLine("```go", nil)
	assert.True(t, StatesEqual(res.EndState, NewStackState("fenced-code")))
	res = tok.TokenizeLine("```", res.EndState)
	assert.Nil(t, res.EndState)
}

func TestUnknownFrameIsDropped(t *testing.T) {
	res := GoTokenizer().TokenizeLine("x", NewStackState("not-a-region"))
	assert.Equal(t, []span{{0, 1, "source.go"}}, spans(res.Tokens))
	assert.Nil(t, res.EndState)
}

func TestTokenizeCoversLine(t *testing.T) {
	tokenizers := Builtins()

	rapid.Check(t, func(t *rapid.T) {
		tok := tokenizers[rapid.IntRange(0, len(tokenizers)-1).Draw(t, "tokenizer")]
		lines := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9 /*"'`+"`"+`\\#<!\->]{0,16}`), 1, 5).Draw(t, "lines")

		var state State
		for _, line := range lines {
			res := tok.TokenizeLine(line, state)
			require.NotEmpty(t, res.Tokens)

			if line == "" {
				require.Len(t, res.Tokens, 1)
				require.Equal(t, 0, res.Tokens[0].Width())
			} else {
				pos := 0
				for _, tk := range res.Tokens {
					require.Equal(t, pos, tk.StartColumn, "gap or overlap in %q", line)
					require.Positive(t, tk.Width())
					require.Equal(t, tok.ScopeName(), tk.Scopes[0])
					pos = tk.EndColumn
				}
				require.Equal(t, len(line), pos)
			}

			again := tok.TokenizeLine(line, state)
			require.Equal(t, res.Tokens, again.Tokens)
			require.True(t, StatesEqual(res.EndState, again.EndState))

			state = res.EndState
		}
	})
}

func TestTokenAt(t *testing.T) {
	tokens := []Token{
		{StartColumn: 0, EndColumn: 3, Scopes: []string{"a"}},
		{StartColumn: 3, EndColumn: 5, Scopes: []string{"b"}},
	}

	tok, ok := TokenAt(tokens, 3)
	require.True(t, ok)
	assert.Equal(t, "b", tok.Scope())

	tok, ok = TokenAt(tokens, 99)
	require.True(t, ok)
	assert.Equal(t, "b", tok.Scope(), "past the end falls back to the last token")

	overlapping := []Token{
		{StartColumn: 2, EndColumn: 4, Scopes: []string{"inner"}},
		{StartColumn: 0, EndColumn: 5, Scopes: []string{"outer"}},
	}
	tok, ok = TokenAt(overlapping, 3)
	require.True(t, ok)
	assert.Equal(t, "outer", tok.Scope(), "lowest start wins")

	_, ok = TokenAt(nil, 0)
	assert.False(t, ok)
}

func TestTokenString(t *testing.T) {
	tok := Token{StartColumn: 1, EndColumn: 4, Scopes: []string{"source.go", "string.quoted.double.go"}}
	assert.Equal(t, "[1,4) source.go string.quoted.double.go", tok.String())
	assert.True(t, strings.HasSuffix(tok.Scope(), ".go"))
}

func TestNormalize(t *testing.T) {
	tok := func(s, e int, scope string) Token {
		return Token{StartColumn: s, EndColumn: e, Scopes: []string{"root", scope}}
	}

	got := Normalize([]Token{
		tok(6, 20, "b"),
		tok(2, 4, "a"),
		tok(3, 5, "overlap"),
		tok(4, 4, "empty"),
	}, 8, "root")

	assert.Equal(t, []span{
		{0, 2, "root"},
		{2, 4, "a"},
		{4, 6, "root"},
		{6, 8, "b"},
	}, spans(got))

	assert.Equal(t, []Token{{Scopes: []string{"root"}}}, Normalize(nil, 0, "root"))
}
