// Package highlight defines the tokenizer engine contract used by the
// line-state cache, along with a regex rule tokenizer, built-in grammars
// for a handful of languages, and a registry for looking grammars up by
// language id, scope name, or file name.
//
// A Tokenizer processes one line at a time. It receives the State left by
// the previous line (nil for the first line) and returns the tokens for the
// line together with the State to carry into the next one. States are opaque
// to callers; the only operation they support is equality, which is what the
// cache uses to decide whether a change must cascade to later lines.
//
// Tokens carry TextMate-style scope lists ordered outermost first:
//
//	[]string{"source.go", "comment.block.go"}
package highlight
