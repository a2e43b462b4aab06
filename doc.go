// Package seatwatch polls a seat-availability JSON endpoint on an
// interval, derives a single numeric metric from each response, and
// reports the value together with its change since the previous poll.
//
// SeatWatch is designed as an SDK-first library: a [Watcher] owns the
// polling schedule, the previous-value state, and the console report
// stream, and is configured via the functional options pattern.
//
// # Quick Start
//
// Create a target, build a watcher, and run it until interrupted:
//
//	target, _ := seatwatch.NewTarget("Box Office", eventURL,
//	    seatwatch.WithQuery("count:seats[3]=SOLD"),
//	)
//	w, _ := seatwatch.New(seatwatch.WithTarget(target))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	w.Start(ctx)
//	<-ctx.Done()
//	w.Stop()
//
// Start performs an immediate first check and then re-arms a one-shot
// timer after each completed check, so checks never overlap. Stop
// cancels the pending timer and is idempotent.
//
// # Configuration
//
// The watcher is configured with functional options:
//
//	w, err := seatwatch.New(
//	    seatwatch.WithTarget(target),
//	    seatwatch.WithInterval(5 * time.Minute),
//	    seatwatch.WithLabel("Sold seats"),
//	    seatwatch.WithStatusPort(8080),
//	)
//
// # Metric Extractors
//
// Extractors turn a response body into the tracked scalar. Built-ins:
//
//   - [CountAtIndex]: count list records whose n-th element equals a value
//   - [CountByField]: count list records whose named field equals a value
//   - [ArrayLen]: length of the list at a dot-path
//   - [NumberAt]: numeric leaf at a dot-path
//   - [ParseQuery]: compile the shorthand query syntax into an extractor
//
// Custom extractors implement the [MetricExtractor] function type and
// run inside a panic-recovery boundary.
//
// # Architecture
//
// Internal packages (not part of the public API):
//
//   - internal/poller: HTTP client and the self-rescheduling check loop
//   - internal/store: in-memory latest/history storage with pub/sub
//   - internal/server: optional status API with Server-Sent Events
//   - dashboard: embedded status page assets
//
// All state is in-memory; nothing survives a restart.
package seatwatch
