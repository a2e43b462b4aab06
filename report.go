package seatwatch

import (
	"fmt"
	"io"
	"time"
)

// FormatDelta renders the human-readable change annotation for a
// sample.
//
// The annotation compares the metric against the previous successful
// value:
//
//   - previous absent (first success): ""
//   - metric greater: "(+N)"
//   - metric smaller: "(-N)" with the native negative sign
//   - equal: "(no change)"
func FormatDelta(previous *int64, metric int64) string {
	if previous == nil {
		return ""
	}
	change := metric - *previous
	switch {
	case change > 0:
		return fmt.Sprintf("(+%d)", change)
	case change < 0:
		return fmt.Sprintf("(%d)", change)
	default:
		return "(no change)"
	}
}

// Reporter writes human-facing console lines for completed check
// cycles.
//
// Successful cycles produce a report line on the output stream;
// failed cycles produce an error line on the error stream. Every line
// is prefixed with the cycle's timestamp in brackets, RFC 3339
// formatted:
//
//	[2026-03-01T19:04:05Z] Sold seats: 5 (+2)
//	[2026-03-01T19:09:05Z] check failed: request failed: connection refused
//
// The zero value is not usable; create reporters with [NewReporter].
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	label  string
}

// NewReporter creates a [Reporter] writing report lines to out and
// error lines to errOut. The label prefixes the metric value in
// report lines ("Sold seats" for the stock seat-map query).
func NewReporter(out, errOut io.Writer, label string) *Reporter {
	return &Reporter{out: out, errOut: errOut, label: label}
}

// Report writes the console line for a completed cycle, choosing the
// output or error stream based on the sample's outcome.
func (r *Reporter) Report(s Sample) {
	ts := s.CheckedAt.Format(time.RFC3339)

	if s.Err != nil {
		fmt.Fprintf(r.errOut, "[%s] check failed: %v\n", ts, s.Err)
		return
	}

	annotation := FormatDelta(s.Previous, s.Metric)
	if annotation == "" {
		fmt.Fprintf(r.out, "[%s] %s: %d\n", ts, r.label, s.Metric)
		return
	}
	fmt.Fprintf(r.out, "[%s] %s: %d %s\n", ts, r.label, s.Metric, annotation)
}

// Notice writes a timestamped informational line to the output stream.
// Used for the startup banner and shutdown notice.
func (r *Reporter) Notice(msg string) {
	fmt.Fprintf(r.out, "[%s] %s\n", time.Now().Format(time.RFC3339), msg)
}
