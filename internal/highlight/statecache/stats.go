package statecache

// Stats are cumulative controller counters.
type Stats struct {
	// Initializations counts full cache builds.
	Initializations int

	// Batches counts change batches applied while a tokenizer was attached.
	Batches int

	// Edits and SkippedEdits count the edits of those batches.
	Edits        int
	SkippedEdits int

	// LinesTokenized counts lines whose end state was stored.
	LinesTokenized int

	// Cascaded is the total number of lines tokenized by forward cascades,
	// MaxCascade the longest single cascade.
	Cascaded   int
	MaxCascade int

	// Queries counts point queries answered.
	Queries int
}
