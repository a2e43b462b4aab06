package store

import "time"

// Sample is the storage representation of one check cycle, optimized
// for JSON serialization (used by the status API and SSE). It is
// decoupled from the poller's internal types to allow independent
// evolution.
type Sample struct {
	// Label is the metric label ("Sold seats").
	Label string `json:"label"`

	// Target is the target's display name.
	Target string `json:"target"`

	// URL is the polled URL.
	URL string `json:"url"`

	// Metric is the extracted value. Zero when Error is set.
	Metric int64 `json:"metric"`

	// Delta is the change since the previous successful cycle.
	// nil for the first successful cycle and for failed cycles.
	Delta *int64 `json:"delta"`

	// LatencyMs is the request latency in milliseconds.
	LatencyMs int64 `json:"latency_ms"`

	// CheckedAt is the timestamp of the cycle.
	CheckedAt time.Time `json:"checked_at"`

	// Error is the failure message for failed cycles, nil on success.
	Error *string `json:"error"`
}

// Store defines the interface for recording and subscribing to check
// samples.
//
// Store implementations must be safe for concurrent access. The
// pub/sub mechanism allows real-time updates to be pushed to
// connected clients (e.g., via Server-Sent Events).
type Store interface {
	// Update records a new sample, appends it to the history ring,
	// and notifies all subscribers.
	Update(s Sample)

	// Latest returns the most recent sample. The boolean is false
	// if no cycle has completed yet.
	Latest() (Sample, bool)

	// History returns recent samples, oldest first. The returned
	// slice is a snapshot; modifications do not affect the store.
	History() []Sample

	// Subscribe returns a channel that receives sample updates.
	// The returned channel is buffered; slow consumers may miss
	// updates. Caller must call Unsubscribe when done to prevent
	// resource leaks.
	Subscribe() <-chan Sample

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Sample)
}
