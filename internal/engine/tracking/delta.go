package tracking

import (
	"fmt"
	"strings"

	"github.com/dshills/linestate/internal/engine/buffer"
)

// ChangeType categorizes the type of a change.
type ChangeType uint8

const (
	// ChangeInsert indicates text was inserted at an empty range.
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates a range was removed with no replacement text.
	ChangeDelete

	// ChangeReplace indicates a non-empty range was replaced with text.
	ChangeReplace

	// ChangeNone indicates an empty range with empty text.
	ChangeNone
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	case ChangeNone:
		return "none"
	default:
		return "unknown"
	}
}

// Classify returns the ChangeType of replacing old with text.
func Classify(old buffer.PointRange, text string) ChangeType {
	switch {
	case old.IsEmpty() && text == "":
		return ChangeNone
	case old.IsEmpty():
		return ChangeInsert
	case text == "":
		return ChangeDelete
	default:
		return ChangeReplace
	}
}

// RangeDelta describes how an old range transforms into the span of its
// replacement text.
type RangeDelta struct {
	// Start and End are the old range.
	Start buffer.Point
	End   buffer.Point

	// LinesDelta is the replacement's line-break count minus the old range's.
	LinesDelta int

	// EndCharactersDelta is the shift of the end column. For a single-line old
	// range it is relative to the old range's width, otherwise to the old end
	// column.
	EndCharactersDelta int
}

// String returns a human-readable representation of the delta.
func (d RangeDelta) String() string {
	return fmt.Sprintf("%s..%s lines%+d chars%+d", d.Start, d.End, d.LinesDelta, d.EndCharactersDelta)
}

// OldLines returns the number of line breaks the old range covered.
func (d RangeDelta) OldLines() int {
	return d.End.Line - d.Start.Line
}

// NewLines returns the number of line breaks in the replacement text.
func (d RangeDelta) NewLines() int {
	return d.OldLines() + d.LinesDelta
}

// ComputeDelta converts an edit (old range plus replacement text) into a
// structural delta.
func ComputeDelta(old buffer.PointRange, text string) (RangeDelta, error) {
	if !old.IsValid() {
		return RangeDelta{}, fmt.Errorf("%w: %s", ErrInvalidRange, old)
	}

	newLines := strings.Count(text, "\n")
	newEndCol := len(text) - (strings.LastIndexByte(text, '\n') + 1)

	endCharsDelta := newEndCol - old.End.Column
	if old.IsSingleLine() {
		endCharsDelta = newEndCol - (old.End.Column - old.Start.Column)
	}

	return RangeDelta{
		Start:              old.Start,
		End:                old.End,
		LinesDelta:         newLines - old.LineSpan(),
		EndCharactersDelta: endCharsDelta,
	}, nil
}

// RebuildRange returns the span the replacement text occupies in the edited
// document.
func RebuildRange(d RangeDelta) buffer.PointRange {
	return buffer.PointRange{
		Start: d.Start,
		End: buffer.Point{
			Line:   d.End.Line + d.LinesDelta,
			Column: d.newEndColumn(),
		},
	}
}

// newEndColumn returns the absolute column of the rebuilt end position.
func (d RangeDelta) newEndColumn() int {
	switch {
	case d.NewLines() == 0 && d.OldLines() > 0:
		// Collapsed onto the start line: untouched prefix before the start
		// plus the replacement's width.
		return d.End.Column + d.EndCharactersDelta + d.Start.Column
	case d.NewLines() == 0:
		return d.End.Column + d.EndCharactersDelta
	case d.OldLines() == 0:
		// A single-line range grew line breaks; the new last line starts at
		// column 0, detached from the old start column.
		return d.End.Column - d.Start.Column + d.EndCharactersDelta
	default:
		return d.End.Column + d.EndCharactersDelta
	}
}

// TranslatePosition moves p across the edit described by d. A position equal
// to the old end moves with it.
func TranslatePosition(p buffer.Point, d RangeDelta) buffer.Point {
	return translate(p, d, true)
}

// TranslateRangeStart moves the start of a range across d. A start equal to
// the old end is left in place.
func TranslateRangeStart(p buffer.Point, d RangeDelta) buffer.Point {
	return translate(p, d, false)
}

// TranslateRangeEnd moves the end of a range across d. An end equal to the
// old end moves with it.
func TranslateRangeEnd(p buffer.Point, d RangeDelta) buffer.Point {
	return translate(p, d, true)
}

// TranslateRange moves both ends of r across d.
func TranslateRange(r buffer.PointRange, d RangeDelta) buffer.PointRange {
	return buffer.PointRange{
		Start: TranslateRangeStart(r.Start, d),
		End:   TranslateRangeEnd(r.End, d),
	}
}

func translate(p buffer.Point, d RangeDelta, inclusive bool) buffer.Point {
	cmp := p.Compare(d.End)
	if cmp < 0 || (cmp == 0 && !inclusive) {
		return p
	}

	if p.Line == d.End.Line {
		end := RebuildRange(d).End
		return buffer.Point{
			Line:   end.Line,
			Column: end.Column + (p.Column - d.End.Column),
		}
	}

	p.Line += d.LinesDelta
	return p
}
