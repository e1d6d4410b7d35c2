package buffer

import (
	"fmt"
	"strconv"
	"strings"
)

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   int // 0-indexed line number
	Column int // 0-indexed column (byte offset within line)
}

// NewPoint creates a Point.
func NewPoint(line, column int) Point {
	return Point{Line: line, Column: column}
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero point (0:0).
func (p Point) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// IsValid returns true if neither coordinate is negative.
func (p Point) IsValid() bool {
	return p.Line >= 0 && p.Column >= 0
}

// ParsePoint parses a "LINE:COL" string (0-indexed) into a Point.
func ParsePoint(s string) (Point, error) {
	lineStr, colStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Point{}, fmt.Errorf("%w: %q (want LINE:COL)", ErrInvalidPoint, s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return Point{}, fmt.Errorf("%w: line %q: %w", ErrInvalidPoint, lineStr, err)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return Point{}, fmt.Errorf("%w: column %q: %w", ErrInvalidPoint, colStr, err)
	}
	p := Point{Line: line, Column: col}
	if !p.IsValid() {
		return Point{}, fmt.Errorf("%w: %q is negative", ErrInvalidPoint, s)
	}
	return p, nil
}
