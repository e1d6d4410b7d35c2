package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/linestate/internal/engine/buffer"
	"github.com/dshills/linestate/internal/highlight/loader"
	"github.com/dshills/linestate/internal/logging"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func innermost(scopes []string) string {
	return scopes[len(scopes)-1]
}

func TestScopeAtBuiltinGrammar(t *testing.T) {
	s := newTestService(t)
	doc := buffer.NewDocument("x := 1\n/* note", buffer.WithLanguageID("go"))

	ctrl, err := s.Attach(doc)
	require.NoError(t, err)
	require.True(t, ctrl.Ready())

	got, ok := s.ScopeAt(doc, buffer.NewPoint(0, 5))
	require.True(t, ok)
	assert.Equal(t, "constant.numeric.go", innermost(got.Scopes))
	assert.Equal(t, "1", got.Text)

	got, ok = s.ScopeAt(doc, buffer.NewPoint(1, 4))
	require.True(t, ok)
	assert.Equal(t, "comment.block.go", innermost(got.Scopes))

	lang, ok := s.Language(doc)
	require.True(t, ok)
	assert.Equal(t, "go", lang)
}

func TestAttachResolvesLanguage(t *testing.T) {
	tests := []struct {
		name string
		doc  *buffer.Document
		want string
	}{
		{"language id", buffer.NewDocument("", buffer.WithLanguageID("rust")), "rust"},
		{"scope name as id", buffer.NewDocument("", buffer.WithLanguageID("source.python")), "python"},
		{"uri extension", buffer.NewDocument("", buffer.WithURI("file:///src/app.js")), "javascript"},
		{"content detection", buffer.NewDocument("#!/usr/bin/env python\nprint(1)\n", buffer.WithURI("file:///bin/tool")), "python"},
		{"unknown", buffer.NewDocument("", buffer.WithURI("file:///x/data.unknownext")), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)
			_, err := s.Attach(tt.doc)
			require.NoError(t, err)

			lang, ok := s.Language(tt.doc)
			require.True(t, ok)
			assert.Equal(t, tt.want, lang)
		})
	}
}

func TestUnknownLanguageIsInert(t *testing.T) {
	s := newTestService(t)
	doc := buffer.NewDocument("hello", buffer.WithLanguageID("cobol"))

	ctrl, err := s.Attach(doc)
	require.NoError(t, err)
	assert.False(t, ctrl.Ready())

	_, ok := s.ScopeAt(doc, buffer.NewPoint(0, 0))
	assert.False(t, ok)

	require.NoError(t, doc.ApplyChanges([]buffer.ContentChange{
		buffer.NewInsert(buffer.NewPoint(0, 0), "x"),
	}))
	assert.Zero(t, ctrl.CacheLen())
}

func TestAttachTwiceReturnsSameController(t *testing.T) {
	s := newTestService(t)
	doc := buffer.NewDocument("a", buffer.WithLanguageID("go"))

	first, err := s.Attach(doc)
	require.NoError(t, err)
	second, err := s.Attach(doc)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, doc.SubscriberCount())
	assert.Equal(t, 1, s.Stats().Documents)
}

func TestScopeAtMemo(t *testing.T) {
	s := newTestService(t)
	doc := buffer.NewDocument("x := 1", buffer.WithLanguageID("go"))
	_, err := s.Attach(doc)
	require.NoError(t, err)

	_, ok := s.ScopeAt(doc, buffer.NewPoint(0, 0))
	require.True(t, ok)
	_, ok = s.ScopeAt(doc, buffer.NewPoint(0, 5))
	require.True(t, ok)

	stats := s.Stats()
	assert.Equal(t, 1, stats.MemoMisses)
	assert.Equal(t, 1, stats.MemoHits)

	require.NoError(t, doc.ApplyChanges([]buffer.ContentChange{
		buffer.NewReplace(buffer.NewPointRange(buffer.NewPoint(0, 5), buffer.NewPoint(0, 6)), `"s"`),
	}))
	got, ok := s.ScopeAt(doc, buffer.NewPoint(0, 6))
	require.True(t, ok)
	assert.Equal(t, "string.quoted.double.go", innermost(got.Scopes))
	assert.Equal(t, 2, s.Stats().MemoMisses)

	assert.Equal(t, 1, s.Refresh("go"))
	_, ok = s.ScopeAt(doc, buffer.NewPoint(0, 6))
	require.True(t, ok)
	assert.Equal(t, 3, s.Stats().MemoMisses)
}

func TestScopeAtDuringChangeNotification(t *testing.T) {
	s := newTestService(t)
	doc := buffer.NewDocument("a\nb", buffer.WithLanguageID("go"))

	// Subscribed ahead of the controller, so the query runs after the text
	// changed and before the cache caught up.
	var during []string
	sub := doc.Subscribe(func(buffer.ChangeEvent) {
		got, ok := s.ScopeAt(doc, buffer.NewPoint(1, 0))
		require.True(t, ok)
		during = got.Scopes
	})
	defer sub.Unsubscribe()

	_, err := s.Attach(doc)
	require.NoError(t, err)

	require.NoError(t, doc.ApplyChanges([]buffer.ContentChange{
		buffer.NewInsert(buffer.NewPoint(0, 0), "/*"),
	}))
	require.NotEmpty(t, during)
	assert.NotEqual(t, "comment.block.go", innermost(during))

	got, ok := s.ScopeAt(doc, buffer.NewPoint(1, 0))
	require.True(t, ok)
	assert.Equal(t, "comment.block.go", innermost(got.Scopes))

	stats := s.Stats()
	assert.Zero(t, stats.MemoHits)
	assert.Equal(t, 2, stats.MemoMisses)
}

func TestDetach(t *testing.T) {
	s := newTestService(t)
	doc := buffer.NewDocument("a", buffer.WithLanguageID("go"))
	_, err := s.Attach(doc)
	require.NoError(t, err)

	require.NoError(t, s.Detach(doc))
	assert.Zero(t, doc.SubscriberCount())

	_, ok := s.ScopeAt(doc, buffer.NewPoint(0, 0))
	assert.False(t, ok)
	assert.ErrorIs(t, s.Detach(doc), ErrDocumentNotAttached)
	assert.Zero(t, s.Refresh("go"))
}

func TestClose(t *testing.T) {
	s := newTestService(t)
	doc := buffer.NewDocument("a", buffer.WithLanguageID("go"))
	_, err := s.Attach(doc)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Zero(t, doc.SubscriberCount())

	_, err = s.Attach(doc)
	assert.ErrorIs(t, err, ErrClosed)
}

func todoScript(scope string) string {
	return fmt.Sprintf(`
function tokenize(line, state)
  local s, e = string.find(line, "TODO", 1, true)
  if s then
    return {{s - 1, e, %q}}, state
  end
  return {}, state
end
`, scope)
}

func writeScript(t *testing.T, path, scope string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(todoScript(scope)), 0o600))
}

func scriptService(t *testing.T, watch bool) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.lua")
	writeScript(t, path, "keyword.todo")

	s := newTestService(t,
		WithWatch(watch),
		WithScripts(loader.ScriptGrammar{Language: "todo", Script: path, Extensions: []string{".todo"}}))
	return s, path
}

func TestScriptGrammarLoadsInBackground(t *testing.T) {
	s, _ := scriptService(t, false)
	doc := buffer.NewDocument("fix: TODO", buffer.WithURI("file:///notes/list.todo"))

	ctrl, err := s.Attach(doc)
	require.NoError(t, err)
	require.Eventually(t, ctrl.Ready, 2*time.Second, 10*time.Millisecond)

	got, ok := s.ScopeAt(doc, buffer.NewPoint(0, 6))
	require.True(t, ok)
	assert.Equal(t, []string{"source.todo", "keyword.todo"}, got.Scopes)

	g, err := s.Registry().Lookup("todo")
	require.NoError(t, err)
	assert.Equal(t, "source.todo", g.ScopeName)
}

func TestReload(t *testing.T) {
	s, path := scriptService(t, false)
	doc := buffer.NewDocument("TODO", buffer.WithLanguageID("todo"))

	ctrl, err := s.Attach(doc)
	require.NoError(t, err)
	require.Eventually(t, ctrl.Ready, 2*time.Second, 10*time.Millisecond)

	writeScript(t, path, "keyword.fixme")
	require.NoError(t, s.Reload("todo"))

	got, ok := s.ScopeAt(doc, buffer.NewPoint(0, 0))
	require.True(t, ok)
	assert.Equal(t, "keyword.fixme", innermost(got.Scopes))
	assert.Equal(t, 1, s.Stats().Reloads)
	assert.NoError(t, ctrl.Verify())
}

func TestReloadFailureKeepsTokenizer(t *testing.T) {
	s, path := scriptService(t, false)
	doc := buffer.NewDocument("TODO", buffer.WithLanguageID("todo"))

	ctrl, err := s.Attach(doc)
	require.NoError(t, err)
	require.Eventually(t, ctrl.Ready, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("this is not lua"), 0o600))
	require.Error(t, s.Reload("todo"))

	got, ok := s.ScopeAt(doc, buffer.NewPoint(0, 0))
	require.True(t, ok)
	assert.Equal(t, "keyword.todo", innermost(got.Scopes))

	assert.ErrorIs(t, s.Reload("go"), ErrNotScripted)
}

func TestWatchReloadsChangedScript(t *testing.T) {
	s, path := scriptService(t, true)
	doc := buffer.NewDocument("TODO", buffer.WithLanguageID("todo"))

	ctrl, err := s.Attach(doc)
	require.NoError(t, err)
	require.Eventually(t, ctrl.Ready, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return s.watcher.IsWatching(path)
	}, 2*time.Second, 10*time.Millisecond)

	writeScript(t, path, "keyword.watched")

	require.Eventually(t, func() bool {
		got, ok := s.ScopeAt(doc, buffer.NewPoint(0, 0))
		return ok && innermost(got.Scopes) == "keyword.watched"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, _ := scriptService(t, false)
	doc := buffer.NewDocument("TODO", buffer.WithLanguageID("todo"))
	ctrl, err := s.Attach(doc)
	require.NoError(t, err)

	require.NoError(t, s.Wait(ctx, doc))
	assert.True(t, ctrl.Ready())

	unknown := buffer.NewDocument("x", buffer.WithLanguageID("cobol"))
	_, err = s.Attach(unknown)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Wait(ctx, unknown), loader.ErrUnavailable)

	assert.ErrorIs(t, s.Wait(ctx, buffer.NewDocument("")), ErrDocumentNotAttached)
}
