package tracking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/linestate/internal/engine/buffer"
)

func pt(l, c int) buffer.Point { return buffer.Point{Line: l, Column: c} }

func pr(sl, sc, el, ec int) buffer.PointRange {
	return buffer.PointRange{Start: pt(sl, sc), End: pt(el, ec)}
}

func TestComputeDelta(t *testing.T) {
	tests := []struct {
		name      string
		old       buffer.PointRange
		text      string
		wantLines int
		wantChars int
	}{
		{"replace shorter on one line", pr(0, 0, 0, 3), "xy", 0, -1},
		{"insert at start of line", pr(2, 0, 2, 0), "abc", 0, 3},
		{"insert newline", pr(0, 1, 0, 1), "\n", 1, 0},
		{"insert two lines", pr(1, 4, 1, 4), "a\nbc\ndef", 2, 3},
		{"delete across lines", pr(0, 1, 2, 0), "", -2, 0},
		{"replace across lines", pr(3, 2, 5, 7), "q", -2, -6},
		{"pure deletion on one line", pr(0, 2, 0, 6), "", 0, -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ComputeDelta(tt.old, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.old.Start, d.Start)
			assert.Equal(t, tt.old.End, d.End)
			assert.Equal(t, tt.wantLines, d.LinesDelta)
			assert.Equal(t, tt.wantChars, d.EndCharactersDelta)
		})
	}
}

func TestComputeDeltaInvalidRange(t *testing.T) {
	_, err := ComputeDelta(pr(1, 0, 0, 0), "x")
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = ComputeDelta(pr(0, -1, 0, 0), "x")
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestRebuildRange(t *testing.T) {
	tests := []struct {
		name string
		old  buffer.PointRange
		text string
		want buffer.PointRange
	}{
		{"same line shrink", pr(0, 0, 0, 3), "xy", pr(0, 0, 0, 2)},
		{"mid-line insert", pr(0, 4, 0, 4), "abc", pr(0, 4, 0, 7)},
		{"insert newline mid-line", pr(0, 1, 0, 1), "\n", pr(0, 1, 1, 0)},
		{"insert lines mid-line", pr(1, 4, 1, 4), "a\nbc\ndef", pr(1, 4, 3, 3)},
		{"delete across lines", pr(0, 1, 2, 0), "", pr(0, 1, 0, 1)},
		{"replace across lines with one line", pr(3, 2, 5, 7), "q", pr(3, 2, 3, 3)},
		{"replace across lines with lines", pr(1, 5, 2, 3), "x\ny\nzz", pr(1, 5, 3, 2)},
		{"replace single line with lines", pr(0, 2, 0, 6), "a\nbcd", pr(0, 2, 1, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ComputeDelta(tt.old, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, RebuildRange(d))
		})
	}
}

func TestTranslate(t *testing.T) {
	// "hello world" with "lo w" (0,3)-(0,7) replaced by "\nX"
	d, err := ComputeDelta(pr(0, 3, 0, 7), "\nX")
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func(buffer.Point, RangeDelta) buffer.Point
		in   buffer.Point
		want buffer.Point
	}{
		{"before edit", TranslatePosition, pt(0, 1), pt(0, 1)},
		{"inside edit", TranslatePosition, pt(0, 5), pt(0, 5)},
		{"at end moves", TranslatePosition, pt(0, 7), pt(1, 1)},
		{"after end on same line", TranslatePosition, pt(0, 9), pt(1, 3)},
		{"later line", TranslatePosition, pt(4, 2), pt(5, 2)},
		{"range start at end stays", TranslateRangeStart, pt(0, 7), pt(0, 7)},
		{"range start after end moves", TranslateRangeStart, pt(0, 8), pt(1, 2)},
		{"range end at end moves", TranslateRangeEnd, pt(0, 7), pt(1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in, d))
		})
	}
}

func TestTranslateRangeInsertAtBoundary(t *testing.T) {
	d, err := ComputeDelta(pr(2, 4, 2, 4), "abc")
	require.NoError(t, err)

	// An insertion at a collapsed range extends its end but keeps its start.
	got := TranslateRange(pr(2, 4, 2, 4), d)
	assert.Equal(t, pr(2, 4, 2, 7), got)

	got = TranslateRange(pr(1, 0, 2, 10), d)
	assert.Equal(t, pr(1, 0, 2, 13), got)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ChangeNone, Classify(pr(0, 0, 0, 0), ""))
	assert.Equal(t, ChangeInsert, Classify(pr(0, 0, 0, 0), "x"))
	assert.Equal(t, ChangeDelete, Classify(pr(0, 0, 1, 0), ""))
	assert.Equal(t, ChangeReplace, Classify(pr(0, 0, 1, 0), "x"))
	assert.Equal(t, "replace", ChangeReplace.String())
}

// genDocument draws a small document of short lines.
func genDocument(t *rapid.T) string {
	lines := rapid.SliceOfN(rapid.StringMatching(`[a-z{} ]{0,8}`), 1, 6).Draw(t, "lines")
	return strings.Join(lines, "\n")
}

// genRange draws a valid range on doc.
func genRange(t *rapid.T, doc *buffer.Document) buffer.PointRange {
	genPoint := func(label string) buffer.Point {
		line := rapid.IntRange(0, doc.LineCount()-1).Draw(t, label+"Line")
		col := rapid.IntRange(0, len(doc.LineAt(line))).Draw(t, label+"Col")
		return pt(line, col)
	}
	a, b := genPoint("a"), genPoint("b")
	if b.Before(a) {
		a, b = b, a
	}
	return buffer.PointRange{Start: a, End: b}
}

func TestRebuildRangeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := buffer.NewDocument(genDocument(t))
		old := genRange(t, doc)
		text := rapid.StringMatching(`[a-z\n]{0,10}`).Draw(t, "text")

		d, err := ComputeDelta(old, text)
		require.NoError(t, err)
		require.NoError(t, doc.ApplyChanges([]buffer.ContentChange{buffer.NewReplace(old, text)}))

		rebuilt := RebuildRange(d)
		require.Equal(t, text, doc.TextRange(rebuilt), "rebuilt %s from %s", rebuilt, d)
	})
}

func TestTranslatePositionPreservesText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := buffer.NewDocument(genDocument(t))
		old := genRange(t, doc)
		text := rapid.StringMatching(`[A-Z\n]{0,10}`).Draw(t, "text")

		// Text after the edited range must be found at the translated position.
		last := doc.ValidatePosition(pt(doc.LineCount(), 0))
		suffix := doc.TextRange(buffer.PointRange{Start: old.End, End: last})

		d, err := ComputeDelta(old, text)
		require.NoError(t, err)
		require.NoError(t, doc.ApplyChanges([]buffer.ContentChange{buffer.NewReplace(old, text)}))

		moved := TranslatePosition(old.End, d)
		newLast := doc.ValidatePosition(pt(doc.LineCount(), 0))
		require.Equal(t, suffix, doc.TextRange(buffer.PointRange{Start: moved, End: newLast}))
	})
}
