// Package tracking provides the position arithmetic that maps an edit onto
// the document it produced.
//
// An edit is an old range plus replacement text. ComputeDelta condenses it
// into a RangeDelta (how many lines were added or removed and how the column
// of the end position moved); RebuildRange recovers the span the replacement
// text occupies in the edited document; the Translate functions move any
// other position or range across the same edit.
//
// # Boundary rules
//
// A position strictly before the old end of the edit is unaffected. A
// position on the old end line (at or after the end column) keeps its
// distance from the end and moves with it. A position on a later line only
// changes line.
//
// Range boundaries treat a position equal to the old end asymmetrically:
// TranslateRangeStart leaves it in place, TranslateRangeEnd moves it. An
// insertion exactly at a range boundary therefore extends the end of the
// range but never retracts its start.
package tracking
