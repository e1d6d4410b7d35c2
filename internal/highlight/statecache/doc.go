// Package statecache keeps a tokenizer's per-line state in step with a live
// document.
//
// A Controller owns one Cache per document. The cache holds, for every line,
// the state the tokenizer produced at the end of that line, so the state
// entering line i is the cached state of line i-1 (and the initial state for
// line 0). The cache is built once when a tokenizer becomes available and
// repaired after each change batch:
//
//  1. every edit is turned into a range delta, and the cache entries of the
//     replaced lines are spliced out for fresh, empty entries sized to the
//     replacement text;
//  2. the lines covered by each replacement are re-tokenized;
//  3. while the last re-tokenized line ends in a state that differs from
//     what was cached, tokenization continues onto the next line.
//
// Step 3 is the forward cascade. It stops at the first line whose end state
// is unchanged, or at the end of the document, so a batch never tokenizes
// more than the lines it touched plus the lines that follow them.
//
// Point queries (ScopeAt) re-tokenize only the queried line from its cached
// entering state and never write to the cache.
package statecache
