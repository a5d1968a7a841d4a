// Package notify implements the per-session unread-notification tracker: a
// poll-driven synchronizer that keeps an officer's unread count near real
// time without push infrastructure on the client, while tolerating races
// between polls and optimistic read-state edits.
//
// Reconciliation rule: the authoritative count at any instant is whatever the
// most recently *completed* fetch reported, as mutated by optimistic edits
// issued strictly after that fetch began. Each fetch carries a monotonic
// sequence number so a slow, stale response can never overwrite a newer one,
// and captures the optimistic-edit counters at its start so later edits are
// re-applied on top of its result.
//
// Optimistic edits are deliberately not rolled back when the remote mutation
// fails: user-visible responsiveness wins, and the next poll reconciles
// truth within one interval.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkamau/cybercase-backend/internal/domain"
)

// DefaultPollInterval is the fixed re-fetch cadence when none is configured.
const DefaultPollInterval = 30 * time.Second

// State is the tracker's fetch lifecycle state. Error is reachable from
// Loading on fetch failure and is not sticky: the next scheduled poll fires
// regardless.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Store is the notification datastore contract the tracker polls and mutates.
//
// Implementations must be safe for concurrent use and must honor the provided
// context for cancellation and timeouts.
type Store interface {
	// ListUnread returns the unread notifications for an officer.
	ListUnread(ctx context.Context, officerID string) ([]domain.Notification, error)
	// MarkRead flips one notification to read.
	MarkRead(ctx context.Context, officerID, notificationID string) error
	// MarkAllRead flips every unread notification for an officer to read.
	MarkAllRead(ctx context.Context, officerID string) (int64, error)
}

// Snapshot is the client-visible unread state delivered to listeners.
type Snapshot struct {
	OfficerID string
	Count     int
	State     State
}

// Tracker synchronizes one session's unread count against the datastore.
// All exported methods are safe for concurrent use. No lock is held across
// a store call.
type Tracker struct {
	store    Store
	interval time.Duration

	mu        sync.Mutex
	officerID string
	state     State
	count     int

	// gen invalidates in-flight fetches when the officer identity changes.
	gen uint64
	// nextSeq / lastApplied order fetches; a completed fetch applies only
	// when its sequence is newer than the last applied one.
	nextSeq     uint64
	lastApplied uint64
	// decEvents / zeroEvents count optimistic edits ever issued; fetches
	// snapshot them at start to re-apply edits issued during flight.
	decEvents  uint64
	zeroEvents uint64

	listeners  map[int]func(Snapshot)
	listenerID int

	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewTracker constructs a stopped Tracker. An interval <= 0 falls back to
// DefaultPollInterval.
func NewTracker(store Store, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		store:     store,
		interval:  interval,
		state:     StateReady,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Start binds the tracker to an officer session, performs the initial fetch,
// and launches the fixed-interval poll loop. The loop stops when ctx is
// canceled or Close is called. Calling Start on a started tracker is a no-op.
func (t *Tracker) Start(ctx context.Context, officerID string) {
	t.mu.Lock()
	if t.closed || t.done != nil {
		t.mu.Unlock()
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	t.mu.Unlock()

	t.SetOfficer(ctx, officerID)

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Refresh in its own goroutine: an overlapping slow fetch
				// is superseded by sequence ordering, not canceled.
				go t.Refresh(ctx)
			}
		}
	}()
}

// Close stops the poll loop and drops all listeners. Safe to call more than
// once. In-flight fetches are discarded by the generation check.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.gen++
	t.listeners = make(map[int]func(Snapshot))
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// SetOfficer switches the session to a new officer identity and refetches.
// An empty officerID forces the count to zero without a remote call.
func (t *Tracker) SetOfficer(ctx context.Context, officerID string) {
	t.mu.Lock()
	t.officerID = officerID
	t.gen++
	if officerID == "" {
		t.count = 0
		t.state = StateReady
		snap := t.snapshotLocked()
		fns := t.listenersLocked()
		t.mu.Unlock()
		deliver(fns, snap)
		return
	}
	t.mu.Unlock()
	t.Refresh(ctx)
}

// Refresh performs one fetch-and-reconcile cycle. It is also what the poll
// timer fires. Concurrent calls are safe; stale completions are discarded.
func (t *Tracker) Refresh(ctx context.Context) {
	t.mu.Lock()
	if t.closed || t.officerID == "" {
		t.mu.Unlock()
		return
	}
	officerID := t.officerID
	gen := t.gen
	t.nextSeq++
	seq := t.nextSeq
	startDec := t.decEvents
	startZero := t.zeroEvents
	t.state = StateLoading
	t.mu.Unlock()

	items, err := t.store.ListUnread(ctx, officerID)

	t.mu.Lock()
	if t.closed || gen != t.gen {
		// Session changed while the fetch was in flight; discard.
		t.mu.Unlock()
		return
	}
	if err != nil {
		// Errors are not sticky: the next poll fires regardless.
		t.state = StateError
		snap := t.snapshotLocked()
		fns := t.listenersLocked()
		t.mu.Unlock()
		log.Warn().Err(err).Str("officer_id", officerID).Msg("unread fetch failed")
		deliver(fns, snap)
		return
	}
	if seq <= t.lastApplied {
		// A newer fetch already completed; this result is stale.
		t.mu.Unlock()
		return
	}
	t.lastApplied = seq

	count := len(items)
	if t.zeroEvents > startZero {
		// A mark-all was issued after this fetch began.
		count = 0
	} else if d := int(t.decEvents - startDec); d > 0 {
		count -= d
	}
	if count < 0 {
		count = 0
	}
	t.count = count
	t.state = StateReady
	snap := t.snapshotLocked()
	fns := t.listenersLocked()
	t.mu.Unlock()
	deliver(fns, snap)
}

// MarkAsRead optimistically decrements the local count (floored at zero),
// then issues the remote mutation. It reports whether the remote mutation
// succeeded; on failure the local decrement stands and the next poll
// reconciles.
func (t *Tracker) MarkAsRead(ctx context.Context, notificationID string) bool {
	t.mu.Lock()
	if t.closed || t.officerID == "" {
		t.mu.Unlock()
		return false
	}
	officerID := t.officerID
	t.decEvents++
	if t.count > 0 {
		t.count--
	}
	snap := t.snapshotLocked()
	fns := t.listenersLocked()
	t.mu.Unlock()
	deliver(fns, snap)

	if err := t.store.MarkRead(ctx, officerID, notificationID); err != nil {
		log.Warn().Err(err).Str("notification_id", notificationID).Msg("mark-as-read failed; local state kept")
		return false
	}
	return true
}

// MarkAllAsRead optimistically zeroes the local count, then issues a single
// bulk remote mutation. It reports whether the remote mutation succeeded;
// failures are not rolled back.
func (t *Tracker) MarkAllAsRead(ctx context.Context) bool {
	t.mu.Lock()
	if t.closed || t.officerID == "" {
		t.mu.Unlock()
		return false
	}
	officerID := t.officerID
	t.zeroEvents++
	t.count = 0
	snap := t.snapshotLocked()
	fns := t.listenersLocked()
	t.mu.Unlock()
	deliver(fns, snap)

	if _, err := t.store.MarkAllRead(ctx, officerID); err != nil {
		log.Warn().Err(err).Str("officer_id", officerID).Msg("mark-all-as-read failed; local state kept")
		return false
	}
	return true
}

// Snapshot returns the current unread state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Count returns the current unread count.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Subscribe registers a listener invoked with a Snapshot after every state
// change. The returned function unregisters it; calling it more than once is
// a no-op.
func (t *Tracker) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	t.mu.Lock()
	t.listenerID++
	id := t.listenerID
	t.listeners[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// snapshotLocked builds a Snapshot; callers hold t.mu.
func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{OfficerID: t.officerID, Count: t.count, State: t.state}
}

// listenersLocked copies the listener set; callers hold t.mu. Listeners are
// invoked after the lock is released so they may call back into the tracker.
func (t *Tracker) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(t.listeners))
	for _, fn := range t.listeners {
		out = append(out, fn)
	}
	return out
}

func deliver(fns []func(Snapshot), snap Snapshot) {
	for _, fn := range fns {
		fn(snap)
	}
}
