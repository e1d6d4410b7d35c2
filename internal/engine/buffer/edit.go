package buffer

import (
	"fmt"
	"slices"
	"strings"
)

// ContentChange represents a single text edit within a change batch.
// Range is expressed against the document text before the batch was applied.
type ContentChange struct {
	Range PointRange // The range to replace
	Text  string     // The replacement text
}

// NewReplace creates a ContentChange replacing r with text.
func NewReplace(r PointRange, text string) ContentChange {
	return ContentChange{Range: r, Text: text}
}

// NewInsert creates a ContentChange that inserts text at a position.
func NewInsert(at Point, text string) ContentChange {
	return ContentChange{Range: PointRange{Start: at, End: at}, Text: text}
}

// NewDelete creates a ContentChange that deletes a range of text.
func NewDelete(r PointRange) ContentChange {
	return ContentChange{Range: r}
}

// String returns a human-readable representation of the change.
func (c ContentChange) String() string {
	if c.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%s, %q)", c.Range.Start, c.Text)
	}
	if c.Text == "" {
		return fmt.Sprintf("Delete%s", c.Range)
	}
	return fmt.Sprintf("Replace%s with %q", c.Range, c.Text)
}

// IsNoOp returns true if this change does nothing.
func (c ContentChange) IsNoOp() bool {
	return c.Range.IsEmpty() && c.Text == ""
}

// NewlineCount returns the number of line breaks in the replacement text.
func (c ContentChange) NewlineCount() int {
	return strings.Count(c.Text, "\n")
}

// ChangeEvent is delivered to subscribers after a batch has been applied.
type ChangeEvent struct {
	// Document is the document that changed. Its text already reflects
	// every change in the batch.
	Document *Document

	// Version is the document version after the batch.
	Version int

	// ContentChanges are the edits of the batch in the order they were
	// submitted, ranges relative to the pre-batch text.
	ContentChanges []ContentChange
}

// SortDescending returns a copy of changes ordered by descending start
// position (bottom of the document first). Among changes with the same start
// the one with the later end comes first, so a replacement of [p,q) is applied
// before an insertion at p. The inserted text then precedes the replacement.
func SortDescending(changes []ContentChange) []ContentChange {
	sorted := slices.Clone(changes)
	slices.SortStableFunc(sorted, func(a, b ContentChange) int {
		if c := b.Range.Start.Compare(a.Range.Start); c != 0 {
			return c
		}
		return b.Range.End.Compare(a.Range.End)
	})
	return sorted
}
