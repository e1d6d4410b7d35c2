package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"go", "javascript", "markdown", "python", "rust"}, r.Languages())

	g, ok := r.ByLanguage("go")
	require.True(t, ok)
	assert.Equal(t, "source.go", g.ScopeName)
	assert.Equal(t, "source.go", g.Tokenizer.ScopeName())

	g, ok = r.ByScopeName("text.html.markdown")
	require.True(t, ok)
	assert.Equal(t, "markdown", g.Language)

	for _, ext := range []string{".rs", "rs", ".RS"} {
		g, ok = r.ByExtension(ext)
		require.True(t, ok, ext)
		assert.Equal(t, "rust", g.Language)
	}

	_, ok = r.ByExtension("")
	assert.False(t, ok)
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	g, err := r.Lookup("python")
	require.NoError(t, err)
	assert.Equal(t, "source.python", g.ScopeName)

	g, err = r.Lookup("source.rust")
	require.NoError(t, err)
	assert.Equal(t, "rust", g.Language)

	_, err = r.Lookup("cobol")
	require.ErrorIs(t, err, ErrGrammarNotFound)
}

func TestRegistryReplace(t *testing.T) {
	r := DefaultRegistry()

	replacement := NewRuleTokenizer("go", ".go2").WithScopeName("source.golang")
	r.Register(replacement.Grammar())

	g, ok := r.ByLanguage("go")
	require.True(t, ok)
	assert.Equal(t, "source.golang", g.ScopeName)

	_, ok = r.ByScopeName("source.go")
	assert.False(t, ok)
	_, ok = r.ByExtension(".go")
	assert.False(t, ok)
	_, ok = r.ByExtension(".go2")
	assert.True(t, ok)
	assert.Len(t, r.Grammars(), 5)
}

func TestRegistryForFile(t *testing.T) {
	r := DefaultRegistry()

	g, err := r.ForFile("/tmp/main.go", nil)
	require.NoError(t, err)
	assert.Equal(t, "go", g.Language)

	g, err = r.ForFile("component.tsx", nil)
	require.NoError(t, err)
	assert.Equal(t, "javascript", g.Language)

	g, err = r.ForFile("tool", []byte("#!/usr/bin/env python\nprint('hi')\n"))
	require.NoError(t, err)
	assert.Equal(t, "python", g.Language)

	_, err = r.ForFile("Makefile", []byte("all:\n\techo hi\n"))
	require.ErrorIs(t, err, ErrGrammarNotFound)
}
