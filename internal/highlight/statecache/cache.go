package statecache

import (
	"slices"

	"github.com/dshills/linestate/internal/highlight"
)

// entry is a cached end-of-line state. A zero entry is missing; a present
// entry may still hold the nil (initial) state.
type entry struct {
	state   highlight.State
	present bool
}

// Cache is an ordered array of per-line tokenizer end states.
type Cache struct {
	entries []entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Len returns the number of entries, present or missing.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Get returns the end state of line i and whether one is cached.
func (c *Cache) Get(i int) (highlight.State, bool) {
	if i < 0 || i >= len(c.entries) {
		return nil, false
	}
	e := c.entries[i]
	return e.state, e.present
}

// EntryState returns the state entering line i: the end state of line i-1,
// or the initial state for line 0 or when nothing is cached.
func (c *Cache) EntryState(i int) highlight.State {
	s, _ := c.Get(i - 1)
	return s
}

// Set stores the end state of line i, growing the cache with missing entries
// if needed.
func (c *Cache) Set(i int, s highlight.State) {
	if i < 0 {
		return
	}
	if i >= len(c.entries) {
		c.entries = append(c.entries, make([]entry, i-len(c.entries)+1)...)
	}
	c.entries[i] = entry{state: s, present: true}
}

// Splice removes up to remove entries starting at at and inserts insert
// missing entries in their place. Indices past the end are clamped.
func (c *Cache) Splice(at, remove, insert int) {
	at = max(0, min(at, len(c.entries)))
	remove = max(0, min(remove, len(c.entries)-at))
	insert = max(0, insert)
	c.entries = slices.Replace(c.entries, at, at+remove, make([]entry, insert)...)
}

// Truncate drops entries from index n on.
func (c *Cache) Truncate(n int) {
	if n < len(c.entries) {
		clear(c.entries[max(n, 0):])
		c.entries = c.entries[:max(n, 0)]
	}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.entries = nil
}

// Missing returns the number of missing entries.
func (c *Cache) Missing() int {
	n := 0
	for _, e := range c.entries {
		if !e.present {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the cached states. Missing entries are nil.
func (c *Cache) Snapshot() []highlight.State {
	out := make([]highlight.State, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.state
	}
	return out
}
