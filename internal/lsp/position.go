package lsp

import (
	"github.com/dshills/linestate/internal/engine/buffer"
)

// ToPoint converts an LSP position into a byte-column document point. The
// position is clamped onto the document.
func ToPoint(lines buffer.Lines, pos Position, enc PositionEncoding) buffer.Point {
	if pos.Line < 0 {
		return buffer.Point{}
	}
	if n := lines.LineCount(); pos.Line >= n {
		return lines.ValidatePosition(buffer.Point{Line: n})
	}

	line := lines.LineAt(pos.Line)
	col := pos.Character
	if enc != EncodingUTF8 {
		col = utf16ToByteOffset(line, pos.Character)
	}
	return lines.ValidatePosition(buffer.Point{Line: pos.Line, Column: col})
}

// ToPointRange converts an LSP range into a document range.
func ToPointRange(lines buffer.Lines, r Range, enc PositionEncoding) buffer.PointRange {
	return buffer.PointRange{
		Start: ToPoint(lines, r.Start, enc),
		End:   ToPoint(lines, r.End, enc),
	}
}

// FromPoint converts a document point into an LSP position.
func FromPoint(lines buffer.Lines, p buffer.Point, enc PositionEncoding) Position {
	p = lines.ValidatePosition(p)
	if enc == EncodingUTF8 {
		return Position{Line: p.Line, Character: p.Column}
	}
	return Position{Line: p.Line, Character: byteToUTF16Offset(lines.LineAt(p.Line), p.Column)}
}

// DocumentRange returns the range covering the whole document.
func DocumentRange(lines buffer.Lines) buffer.PointRange {
	last := lines.LineCount() - 1
	return buffer.PointRange{End: buffer.Point{Line: last, Column: len(lines.LineAt(last))}}
}

// utf16LenForString returns the length in UTF-16 code units.
func utf16LenForString(s string) int {
	count := 0
	for _, r := range s {
		if r >= 0x10000 {
			count += 2 // Surrogate pair
		} else {
			count++
		}
	}
	return count
}

// byteToUTF16Offset converts a byte offset within a string to UTF-16 offset.
func byteToUTF16Offset(s string, byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff >= len(s) {
		return utf16LenForString(s)
	}

	utf16Off := 0
	for i, r := range s {
		if i >= byteOff {
			break
		}
		if r >= 0x10000 {
			utf16Off += 2
		} else {
			utf16Off++
		}
	}
	return utf16Off
}

// utf16ToByteOffset converts a UTF-16 offset to byte offset within a string.
// An offset inside a surrogate pair resolves to the end of the character.
func utf16ToByteOffset(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}

	utf16Count := 0
	for i, r := range s {
		if utf16Count >= utf16Off {
			return i
		}
		if r >= 0x10000 {
			utf16Count += 2
		} else {
			utf16Count++
		}
	}
	return len(s)
}
