// Package lsp decodes Language Server Protocol change notifications into
// document edit batches.
//
// A textDocument/didChange notification lists content changes that apply one
// after another, with positions counted in UTF-16 code units by default.
// Document batches instead address every change against the text before the
// batch, with byte columns. ApplyDidChange bridges the two: changes that
// arrive bottom-up without touching each other are applied as one batch,
// anything else one change at a time.
//
// Decoding uses gjson, which reads the fields it needs without unmarshalling
// the whole message, so both a bare params object and a full JSON-RPC
// envelope are accepted.
package lsp
