// Package buffer provides the line-oriented document model consumed by the
// tokenization state cache.
//
// A Document is an ordered sequence of lines addressed by zero-based index.
// It is mutated only through ApplyChanges, which takes a batch of
// non-overlapping content changes (all expressed against the text as it was
// before the batch) and then notifies every subscriber with one ChangeEvent.
//
// Basic usage:
//
//	doc := buffer.NewDocument("a{\nb\n}", buffer.WithLanguageID("go"))
//
//	sub := doc.Subscribe(func(ev buffer.ChangeEvent) {
//	    // react to ev.ContentChanges
//	})
//	defer sub.Unsubscribe()
//
//	_ = doc.ApplyChanges([]buffer.ContentChange{
//	    buffer.NewReplace(buffer.NewPointRange(buffer.Point{0, 1}, buffer.Point{0, 2}), ""),
//	})
//
// Position Types:
//
//   - Point: line and column (0-indexed, column in bytes)
//   - PointRange: half-open [Start, End) span of Points
//
// Out-of-bounds positions are never an error for readers: ValidatePosition
// and ValidateRange clamp them onto the document.
//
// Thread Safety:
//
// Document methods are safe for concurrent use. Subscribers are invoked
// synchronously from ApplyChanges after the write lock is released, in
// subscription order, so a subscriber may read the document it was notified
// about. Notifications are never delivered concurrently for one document.
package buffer
