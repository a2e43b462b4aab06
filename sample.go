package seatwatch

import "time"

// MetricExtractor is a function type that derives the tracked scalar
// metric from an HTTP response body.
//
// MetricExtractor follows functional programming principles: it is a
// pure function where the same input always produces the same output.
// This makes extractors easy to test, compose, and reason about.
//
// An extractor returns an error when the document does not have the
// expected shape (missing path, node is not a list, record too short).
// Such errors are treated like parse errors: the check cycle is logged
// and aborted, and the previous metric value is left untouched.
//
// Several built-in extractors are provided: [CountAtIndex],
// [CountByField], [ArrayLen], and [NumberAt]. The shorthand query
// syntax understood by [ParseQuery] covers all of them.
//
// # Panic Safety
//
// MetricExtractor functions are called within a panic recovery
// boundary. If an extractor panics, the check cycle fails with an
// error containing a correlation ID and the full stack trace is
// logged. A misbehaving extractor cannot crash the watcher.
type MetricExtractor func(body []byte) (int64, error)

// Sample holds the outcome of one completed check cycle.
//
// Sample is immutable after creation. A successful cycle carries the
// extracted metric and, from the second successful cycle onward, the
// previous value and the computed delta. A failed cycle carries only
// the error and timing information.
type Sample struct {
	// TargetName is the display name of the watched target.
	TargetName string

	// URL is the target URL that was polled.
	URL string

	// Metric is the extracted scalar value. Zero if the cycle failed.
	Metric int64

	// Previous is the metric from the last successful cycle, or nil if
	// this is the first successful cycle since the process started.
	Previous *int64

	// Delta is Metric minus *Previous. Only meaningful when Previous
	// is non-nil.
	Delta int64

	// Latency is the time taken to complete the HTTP request.
	Latency time.Duration

	// CheckedAt is the timestamp captured at the start of the cycle.
	CheckedAt time.Time

	// Err contains the transport, parse, or query-evaluation error
	// that aborted the cycle. nil means the cycle succeeded.
	Err error

	// StatusCode is the HTTP status code returned by the endpoint.
	// Zero if the request failed before receiving a response.
	StatusCode int
}
