package highlight

import "errors"

// ErrGrammarNotFound is returned when no registered grammar matches a lookup.
var ErrGrammarNotFound = errors.New("grammar not found")
