package buffer

import (
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
)

// ChangeHandler receives change events for a document.
type ChangeHandler func(ChangeEvent)

// Subscription represents an active change subscription on a document.
type Subscription struct {
	id        string
	doc       *Document
	handler   ChangeHandler
	cancelled atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// IsActive returns true until Unsubscribe is called.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Unsubscribe stops event delivery. It is safe to call more than once and
// from within a handler.
func (s *Subscription) Unsubscribe() {
	if s.cancelled.Swap(true) {
		return
	}
	s.doc.removeSubscriber(s)
}

// Subscribe registers handler for every subsequent change batch.
// Handlers run synchronously in subscription order.
func (d *Document) Subscribe(handler ChangeHandler) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		doc:     d,
		handler: handler,
	}

	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.subscribers = append(d.subscribers, sub)
	return sub
}

// SubscriberCount returns the number of active subscriptions.
func (d *Document) SubscriberCount() int {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	return len(d.subscribers)
}

func (d *Document) removeSubscriber(sub *Subscription) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.subscribers = slices.DeleteFunc(d.subscribers, func(s *Subscription) bool {
		return s == sub
	})
}

func (d *Document) notify(ev ChangeEvent) {
	d.subMu.Lock()
	subs := slices.Clone(d.subscribers)
	d.subMu.Unlock()

	for _, sub := range subs {
		if sub.IsActive() {
			sub.handler(ev)
		}
	}
}
