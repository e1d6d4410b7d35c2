// Package lua provides a tokenizer engine backed by a sandboxed Lua script.
//
// A grammar script defines a global function
//
//	function tokenize(line, state)
//	  -- state is nil or an array of strings (bottom frame first)
//	  return tokens, next_state
//	end
//
// Each token is a table {start, stop, scope} or {start=..., stop=...,
// scope=...} with zero-based, half-open byte columns. scope is a string or an
// array of strings; the root scope is prepended automatically. next_state may
// be nil, a string, or an array of strings.
//
// A script may set the global scope_name to choose its root scope.
//
// Scripts run with only the base, table, string and math libraries. File,
// OS, and module loading functions are removed.
//
// gopher-lua's LState is not goroutine-safe; every call into the script is
// serialized by the Tokenizer.
package lua
