package store

import (
	"sync"
)

// DefaultHistoryCap is the number of recent samples kept in memory.
// At the default 5-minute interval this covers a full day.
const DefaultHistoryCap = 288

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage of the latest sample and a
// bounded history ring, plus a publish-subscribe mechanism for
// real-time updates. When the ring is full the oldest sample is
// dropped.
//
// Subscribers receive updates via buffered channels (buffer size 100).
// Updates are sent non-blocking; if a subscriber's buffer is full, the
// update is dropped for that subscriber to prevent blocking the check
// loop's consumer.
type MemoryStore struct {
	mu        sync.RWMutex
	latest    Sample
	hasLatest bool
	history   []Sample
	cap       int

	subMu       sync.RWMutex
	subscribers map[chan Sample]struct{}
}

// NewMemoryStore creates a new in-memory [Store] keeping up to cap
// samples of history. A cap below 1 falls back to
// [DefaultHistoryCap].
//
// The store is immediately ready for use. No cleanup is required when
// done.
func NewMemoryStore(cap int) *MemoryStore {
	if cap < 1 {
		cap = DefaultHistoryCap
	}
	return &MemoryStore{
		cap:         cap,
		subscribers: make(map[chan Sample]struct{}),
	}
}

// Update records a [Sample] and notifies all subscribers.
//
// The sample becomes the latest and is appended to the history ring,
// evicting the oldest entry when the ring is at capacity.
func (m *MemoryStore) Update(s Sample) {
	m.mu.Lock()
	m.latest = s
	m.hasLatest = true
	m.history = append(m.history, s)
	if len(m.history) > m.cap {
		m.history = m.history[len(m.history)-m.cap:]
	}
	m.mu.Unlock()

	m.notifySubscribers(s)
}

// Latest returns the most recent sample; the boolean is false until
// the first cycle completes.
func (m *MemoryStore) Latest() (Sample, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.hasLatest
}

// History returns a snapshot of recent samples, oldest first.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) History() []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Sample, len(m.history))
	copy(out, m.history)
	return out
}

// Subscribe creates a new subscription and returns a channel for
// receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer
// fills (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent
// resource leaks.
func (m *MemoryStore) Subscribe() <-chan Sample {
	ch := make(chan Sample, 100)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// updates will be sent. Safe to call multiple times or with an unknown
// channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Sample) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the sample to all active subscribers.
//
// Non-blocking: if a subscriber's channel buffer is full, the message
// is dropped for that subscriber rather than blocking the update path.
func (m *MemoryStore) notifySubscribers(s Sample) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- s:
		default:
			// subscriber is slow, drop the message
		}
	}
}
