// Package loader resolves tokenizers asynchronously and watches grammar
// scripts for changes.
//
// A Handle is the result of a one-time load. It starts pending and settles
// exactly once, either ready with a tokenizer or unavailable with an error.
// Consumers that attach before the load completes register an OnDone
// callback and stay inert until it fires.
package loader
