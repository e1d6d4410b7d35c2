package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError = "error"
	FieldPath  = "path"

	// Document fields.
	FieldDocument = "doc"
	FieldVersion  = "version"
	FieldLanguage = "language"
	FieldLines    = "lines"

	// Edit and reparse fields.
	FieldEdit      = "edit"
	FieldEdits     = "edits"
	FieldRange     = "range"
	FieldLine      = "line"
	FieldRequested = "requested"
	FieldCascaded  = "cascaded"
	FieldSkipped   = "skipped"

	// Grammar fields.
	FieldScope   = "scope"
	FieldGrammar = "grammar"
	FieldStatus  = "status"

	// Build fields.
	FieldCommit = "commit"
	FieldBuilt  = "built"
)
