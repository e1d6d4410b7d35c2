package lsp

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/dshills/linestate/internal/engine/buffer"
)

// ParseDidChange decodes a didChange notification. data may be the params
// object or a complete JSON-RPC message.
func ParseDidChange(data []byte) (DidChangeParams, error) {
	if !gjson.ValidBytes(data) {
		return DidChangeParams{}, fmt.Errorf("%w: malformed JSON", ErrInvalidMessage)
	}

	root := gjson.ParseBytes(data)
	if method := root.Get("method"); method.Exists() {
		if method.String() != MethodDidChange {
			return DidChangeParams{}, fmt.Errorf("%w: %s", ErrUnexpectedMethod, method.String())
		}
		root = root.Get("params")
	}

	uri := root.Get("textDocument.uri")
	if uri.Type != gjson.String {
		return DidChangeParams{}, fmt.Errorf("%w: missing textDocument.uri", ErrInvalidMessage)
	}
	changes := root.Get("contentChanges")
	if !changes.IsArray() {
		return DidChangeParams{}, fmt.Errorf("%w: missing contentChanges", ErrInvalidMessage)
	}

	params := DidChangeParams{
		TextDocument: VersionedTextDocumentIdentifier{
			URI:     DocumentURI(uri.String()),
			Version: int(root.Get("textDocument.version").Int()),
		},
	}

	for i, c := range changes.Array() {
		text := c.Get("text")
		if text.Type != gjson.String {
			return DidChangeParams{}, fmt.Errorf("%w: change %d has no text", ErrInvalidMessage, i)
		}
		change := TextDocumentContentChangeEvent{
			Text:        text.String(),
			RangeLength: int(c.Get("rangeLength").Int()),
		}
		if r := c.Get("range"); r.Exists() {
			rng, err := parseRange(r)
			if err != nil {
				return DidChangeParams{}, fmt.Errorf("change %d: %w", i, err)
			}
			change.Range = &rng
		}
		params.ContentChanges = append(params.ContentChanges, change)
	}
	return params, nil
}

func parseRange(r gjson.Result) (Range, error) {
	fields := []string{"start.line", "start.character", "end.line", "end.character"}
	vals := make([]int, len(fields))
	for i, f := range fields {
		v := r.Get(f)
		if v.Type != gjson.Number {
			return Range{}, fmt.Errorf("%w: range %s is not a number", ErrInvalidMessage, f)
		}
		vals[i] = int(v.Int())
	}
	return Range{
		Start: Position{Line: vals[0], Character: vals[1]},
		End:   Position{Line: vals[2], Character: vals[3]},
	}, nil
}

// Editor is a document that accepts edit batches.
type Editor interface {
	buffer.Lines
	ApplyChanges(changes []buffer.ContentChange) error
}

// ApplyDidChange applies the changes of p to doc and returns the number of
// batches used. Changes listed bottom-up with no two touching are applied as
// a single batch; otherwise each change is its own batch.
func ApplyDidChange(doc Editor, p DidChangeParams, enc PositionEncoding) (int, error) {
	if len(p.ContentChanges) == 0 {
		return 0, nil
	}

	if isBottomUp(p.ContentChanges) {
		batch := make([]buffer.ContentChange, len(p.ContentChanges))
		for i, c := range p.ContentChanges {
			batch[i] = ToContentChange(doc, c, enc)
		}
		if err := doc.ApplyChanges(batch); err != nil {
			return 0, err
		}
		return 1, nil
	}

	for i, c := range p.ContentChanges {
		if err := doc.ApplyChanges([]buffer.ContentChange{ToContentChange(doc, c, enc)}); err != nil {
			return i, fmt.Errorf("change %d: %w", i, err)
		}
	}
	return len(p.ContentChanges), nil
}

// ToContentChange converts one LSP change against the current text of lines.
func ToContentChange(lines buffer.Lines, c TextDocumentContentChangeEvent, enc PositionEncoding) buffer.ContentChange {
	if c.Range == nil {
		return buffer.NewReplace(DocumentRange(lines), c.Text)
	}
	return buffer.NewReplace(ToPointRange(lines, *c.Range, enc), c.Text)
}

// isBottomUp reports whether every change has a range ending strictly before
// the start of the change listed before it. Such changes do not see each
// other's effects, so sequential and simultaneous application agree.
func isBottomUp(changes []TextDocumentContentChangeEvent) bool {
	if len(changes) == 1 {
		return true
	}
	return !slices.ContainsFunc(changes, func(c TextDocumentContentChangeEvent) bool {
		return c.Range == nil
	}) && isDescending(changes)
}

func isDescending(changes []TextDocumentContentChangeEvent) bool {
	for i := 1; i < len(changes); i++ {
		prev, cur := changes[i-1].Range, changes[i].Range
		if !positionBefore(cur.End, prev.Start) {
			return false
		}
	}
	return true
}

func positionBefore(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
