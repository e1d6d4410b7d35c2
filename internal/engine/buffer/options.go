package buffer

import "strings"

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithLanguageID sets the document's language identifier (e.g. "go").
func WithLanguageID(id string) Option {
	return func(d *Document) {
		d.languageID = id
	}
}

// WithURI sets the document's URI or path.
func WithURI(uri string) Option {
	return func(d *Document) {
		d.uri = uri
	}
}

// WithVersion sets the initial document version.
func WithVersion(v int) Option {
	return func(d *Document) {
		d.version = v
	}
}

// normalizeLineEndings converts CRLF and CR line endings to LF.
func normalizeLineEndings(s string) string {
	if strings.IndexByte(s, '\r') < 0 {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
