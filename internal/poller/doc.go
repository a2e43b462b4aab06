// Package poller implements the check loop for seatwatch.
//
// The package has two parts:
//
//   - Client: an HTTP client wrapper with per-request context
//     timeouts and a bounded response body
//   - Loop: the single-target poll loop that performs one
//     fetch-extract-diff cycle at a time, re-arming a one-shot timer
//     after each completed cycle
//
// The loop owns the only mutable cross-cycle state, the metric value
// of the last successful cycle, and confines it to one goroutine so
// no synchronization is needed around it. Results are emitted on a
// channel consumed by the seatwatch package.
//
// This package is internal; its types may change without notice.
package poller
