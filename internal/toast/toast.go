// Package toast implements the in-process broadcast queue for short-lived UI
// feedback messages. Producers publish without knowing who is listening;
// every registered listener receives the full current list (not a delta) on
// each change, and each message expires on its own timer unless dismissed
// first.
//
// The queue is an explicitly constructed, owned instance with a defined
// lifecycle (construct, use, Close); nothing here is process-global. State is
// guarded by a mutex; listener callbacks run synchronously under that lock so
// every listener observes changes in publish order. Callbacks must therefore
// be fast and must not call back into the queue (hand off to a channel
// instead). Nothing is persisted: a process restart loses all messages.
package toast

import (
	"sync"
	"time"
)

// DefaultTTL is the per-message lifetime when none is configured.
const DefaultTTL = 5 * time.Second

// Severity levels for toast messages.
const (
	SeverityDefault     = "default"
	SeverityDestructive = "destructive"
)

// Message is one transient feedback item. ID is assigned by the queue and is
// unique and monotonically increasing within the queue instance.
type Message struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity"`
}

// Listener receives the full ordered message list after every change.
type Listener func(messages []Message)

// Queue is the broadcast queue. Safe for concurrent use. The zero value is
// not usable; construct with New.
type Queue struct {
	mu         sync.Mutex
	ttl        time.Duration
	nextID     uint64
	messages   []Message
	timers     map[uint64]*time.Timer
	listeners  map[int]Listener
	listenerID int
	closed     bool
}

// New constructs a Queue whose messages expire after ttl. A ttl <= 0 falls
// back to DefaultTTL.
func New(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		ttl:       ttl,
		timers:    make(map[uint64]*time.Timer),
		listeners: make(map[int]Listener),
	}
}

// Publish appends a message, assigns it the next ID, starts its expiry
// timer, and synchronously notifies all listeners with the updated list.
// It returns the assigned ID. Publishing on a closed queue returns 0 and
// does nothing.
func (q *Queue) Publish(title, description, severity string) uint64 {
	if severity == "" {
		severity = SeverityDefault
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0
	}
	q.nextID++
	id := q.nextID
	q.messages = append(q.messages, Message{
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    severity,
	})
	q.timers[id] = time.AfterFunc(q.ttl, func() { q.expire(id) })
	q.notifyLocked()
	return id
}

// Dismiss removes a message immediately, cancels its pending expiry timer,
// and notifies listeners. Dismissing an unknown or already-dismissed ID is a
// no-op, not an error.
func (q *Queue) Dismiss(id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(id, true)
}

// expire is the timer callback: removal behaves exactly like Dismiss. If the
// message was dismissed manually in the meantime, the timer entry is already
// gone and this is a no-op, so no double-removal notification is delivered.
func (q *Queue) expire(id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.timers[id]; !ok {
		return
	}
	q.removeLocked(id, true)
}

// removeLocked deletes a message and its timer; callers hold q.mu. When the
// id is present and notify is true, listeners are informed.
func (q *Queue) removeLocked(id uint64, notify bool) {
	if q.closed {
		return
	}
	t, ok := q.timers[id]
	if !ok {
		return
	}
	t.Stop()
	delete(q.timers, id)
	for i, m := range q.messages {
		if m.ID == id {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			break
		}
	}
	if notify {
		q.notifyLocked()
	}
}

// Messages returns a copy of the current list in publish order.
func (q *Queue) Messages() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.copyLocked()
}

// Subscribe registers a listener. The returned function unregisters it;
// calling it more than once, or unregistering a listener that never
// registered, is a no-op. New listeners receive no replay: they observe the
// list starting with the next publish or dismiss event.
func (q *Queue) Subscribe(fn Listener) (unsubscribe func()) {
	q.mu.Lock()
	q.listenerID++
	id := q.listenerID
	if !q.closed {
		q.listeners[id] = fn
	}
	q.mu.Unlock()
	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

// Close stops every pending expiry timer, drops all messages and listeners,
// and marks the queue unusable. Safe to call more than once. No final
// notification is delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.messages = nil
	q.listeners = make(map[int]Listener)
}

// notifyLocked delivers the current list to every listener; callers hold
// q.mu. Each listener gets its own copy so none can mutate shared state.
func (q *Queue) notifyLocked() {
	for _, fn := range q.listeners {
		fn(q.copyLocked())
	}
}

// copyLocked snapshots the message list; callers hold q.mu.
func (q *Queue) copyLocked() []Message {
	out := make([]Message, len(q.messages))
	copy(out, q.messages)
	return out
}
