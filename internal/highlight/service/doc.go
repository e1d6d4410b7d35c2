// Package service is the process-wide highlighting context.
//
// A Service owns the grammar registry, one loader handle per language and
// one statecache.Controller per attached document. Hosts attach documents,
// ask ScopeAt questions, refresh languages whose grammar changed and detach
// documents when they close.
//
// Scripted grammars are loaded in the background the first time a document
// of their language is attached. With watching enabled a scripted grammar is
// reloaded when its file changes and every document of that language is
// rebuilt with the new tokenizer.
//
// Tokens of recently queried lines are memoized, keyed by document, version,
// tokenizer generation and line, so repeated point queries on an unchanged
// line skip tokenization.
package service
