package highlight

// Tokenizer is a stateful line tokenizer.
//
// TokenizeLine must be deterministic: the same line and an Equal prior state
// always produce the same tokens and an Equal end state. Implementations must
// not fail; a tokenizer that cannot make sense of a line should still return
// a result (typically a single root-scope token and the prior state).
//
// Tokenizers bounded by a wall-clock budget, such as scripted grammars with an
// execution timeout, are the exception: a line that runs out of time degrades
// to the fallback result and may tokenize normally on a later call. A cache
// built while that happened can disagree with a rebuild until the affected
// lines are reparsed or the cache is refreshed.
type Tokenizer interface {
	// ScopeName returns the root scope, e.g. "source.go".
	ScopeName() string

	// TokenizeLine tokenizes line given the state left by the previous line.
	TokenizeLine(line string, prior State) LineResult
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc struct {
	Scope string
	Fn    func(line string, prior State) LineResult
}

// ScopeName implements Tokenizer.
func (f TokenizerFunc) ScopeName() string { return f.Scope }

// TokenizeLine implements Tokenizer.
func (f TokenizerFunc) TokenizeLine(line string, prior State) LineResult {
	return f.Fn(line, prior)
}
