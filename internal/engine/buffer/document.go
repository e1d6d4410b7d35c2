package buffer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DocumentID uniquely identifies an open document for the lifetime of the process.
type DocumentID string

// NewDocumentID generates a new random document ID.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.NewString())
}

// Lines is the read side of the document model used by tokenization.
// Implementations clamp out-of-bounds input instead of failing.
type Lines interface {
	// LineCount returns the number of lines. An empty document has one line.
	LineCount() int

	// LineAt returns the text of line i without its line break.
	// Out-of-range indices return "".
	LineAt(i int) string

	// ValidatePosition clamps p onto the document.
	ValidatePosition(p Point) Point

	// ValidateRange clamps both ends of r onto the document and orders them.
	ValidateRange(r PointRange) PointRange
}

// Document is a live, line-addressed text buffer.
// All methods are thread-safe.
type Document struct {
	mu         sync.RWMutex
	lines      []string
	version    int
	id         DocumentID
	uri        string
	languageID string

	// writeMu serializes ApplyChanges including subscriber notification,
	// so change events form a strict queue.
	writeMu sync.Mutex

	subMu       sync.Mutex
	subscribers []*Subscription
}

// NewDocument creates a document with initial content.
// Line endings are normalized to LF.
func NewDocument(text string, opts ...Option) *Document {
	d := &Document{
		id:      NewDocumentID(),
		version: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.lines = strings.Split(normalizeLineEndings(text), "\n")
	return d
}

// ID returns the document's unique identifier.
func (d *Document) ID() DocumentID {
	return d.id
}

// URI returns the document's URI or path, if any.
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the document's language identifier.
func (d *Document) LanguageID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.languageID
}

// SetLanguageID changes the document's language identifier.
func (d *Document) SetLanguageID(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.languageID = id
}

// Version returns the current document version.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strings.Join(d.lines, "\n")
}

// TextRange returns the text covered by r after clamping it onto the document.
func (d *Document) TextRange(r PointRange) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start, end := d.clamp(r.Start), d.clamp(r.End)
	if !start.Before(end) {
		return ""
	}
	if start.Line == end.Line {
		return d.lines[start.Line][start.Column:end.Column]
	}

	var sb strings.Builder
	sb.WriteString(d.lines[start.Line][start.Column:])
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(d.lines[i])
	}
	sb.WriteByte('\n')
	sb.WriteString(d.lines[end.Line][:end.Column])
	return sb.String()
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// LineAt returns the text of line i, or "" if i is out of range.
func (d *Document) LineAt(i int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// ValidatePosition clamps p onto the document.
func (d *Document) ValidatePosition(p Point) Point {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clamp(p)
}

// ValidateRange clamps both ends of r onto the document. If the clamped
// start comes after the clamped end they are swapped.
func (d *Document) ValidateRange(r PointRange) PointRange {
	d.mu.RLock()
	defer d.mu.RUnlock()
	start, end := d.clamp(r.Start), d.clamp(r.End)
	if start.After(end) {
		start, end = end, start
	}
	return PointRange{Start: start, End: end}
}

func (d *Document) clamp(p Point) Point {
	if p.Line < 0 {
		return Point{}
	}
	if p.Line >= len(d.lines) {
		last := len(d.lines) - 1
		return Point{Line: last, Column: len(d.lines[last])}
	}
	if p.Column < 0 {
		p.Column = 0
	}
	if n := len(d.lines[p.Line]); p.Column > n {
		p.Column = n
	}
	return p
}

// ApplyChanges applies a batch of non-overlapping changes and notifies
// subscribers. Every range refers to the text before the batch. Ranges that
// reach past the document are clamped; negative or inverted ranges reject the
// whole batch. The notified event carries the clamped, normalized changes.
func (d *Document) ApplyChanges(changes []ContentChange) error {
	if len(changes) == 0 {
		return nil
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	ev, err := d.apply(changes)
	if err != nil {
		return err
	}

	d.notify(ev)
	return nil
}

func (d *Document) apply(changes []ContentChange) (ChangeEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	normalized := make([]ContentChange, len(changes))
	for i, c := range changes {
		if !c.Range.IsValid() {
			return ChangeEvent{}, fmt.Errorf("%w: change %d %s", ErrRangeInvalid, i, c.Range)
		}
		normalized[i] = ContentChange{
			Range: PointRange{Start: d.clamp(c.Range.Start), End: d.clamp(c.Range.End)},
			Text:  normalizeLineEndings(c.Text),
		}
	}

	ordered := SortDescending(normalized)
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Range.Overlaps(ordered[i-1].Range) {
			return ChangeEvent{}, fmt.Errorf("%w: %s and %s", ErrOverlappingChanges,
				ordered[i].Range, ordered[i-1].Range)
		}
	}

	for _, c := range ordered {
		d.replace(c.Range, c.Text)
	}
	d.version++

	return ChangeEvent{
		Document:       d,
		Version:        d.version,
		ContentChanges: normalized,
	}, nil
}

// replace splices text into the line slice. r must already be clamped.
func (d *Document) replace(r PointRange, text string) {
	prefix := d.lines[r.Start.Line][:r.Start.Column]
	suffix := d.lines[r.End.Line][r.End.Column:]

	parts := strings.Split(text, "\n")
	parts[0] = prefix + parts[0]
	parts[len(parts)-1] += suffix

	tail := d.lines[r.End.Line+1:]
	lines := make([]string, 0, r.Start.Line+len(parts)+len(tail))
	lines = append(lines, d.lines[:r.Start.Line]...)
	lines = append(lines, parts...)
	lines = append(lines, tail...)
	d.lines = lines
}
