package tracking

import "errors"

// ErrInvalidRange is returned for inverted ranges or negative coordinates.
var ErrInvalidRange = errors.New("invalid edit range")
