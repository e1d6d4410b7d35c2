package buffer

import "fmt"

// PointRange represents a range using line/column positions.
type PointRange struct {
	Start Point // Inclusive start position
	End   Point // Exclusive end position
}

// NewPointRange creates a new PointRange from start and end points.
func NewPointRange(start, end Point) PointRange {
	return PointRange{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r PointRange) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start.String(), r.End.String())
}

// IsEmpty returns true if start equals end.
func (r PointRange) IsEmpty() bool {
	return r.Start.Compare(r.End) == 0
}

// IsValid returns true if start <= end and no coordinate is negative.
func (r PointRange) IsValid() bool {
	return r.Start.IsValid() && r.End.IsValid() && r.Start.Compare(r.End) <= 0
}

// Contains returns true if the given point is within the range.
func (r PointRange) Contains(p Point) bool {
	return p.Compare(r.Start) >= 0 && p.Compare(r.End) < 0
}

// IsSingleLine returns true if the range spans only one line.
func (r PointRange) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}

// LineSpan returns the number of line breaks covered by the range.
func (r PointRange) LineSpan() int {
	return r.End.Line - r.Start.Line
}

// Overlaps returns true if the two ranges share at least one position.
// Two empty ranges at the same point are considered overlapping.
func (r PointRange) Overlaps(other PointRange) bool {
	if r.IsEmpty() && other.IsEmpty() {
		return r.Start.Compare(other.Start) == 0
	}
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}
