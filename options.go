package seatwatch

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

// watcherConfig holds mutable state during watcher construction.
type watcherConfig struct {
	target          *Target
	interval        time.Duration
	label           string
	statusPort      int
	logger          *slog.Logger
	out             io.Writer
	errOut          io.Writer
	sampleCallbacks []func(Sample)
}

// Option is a function that configures a [Watcher] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithTarget], [WithInterval], [WithLabel],
// [WithStatusPort], [WithLogger], [WithOutput], [WithSampleCallback].
type Option func(*watcherConfig) error

// WithTarget sets the [Target] to watch. Exactly one target is
// required for [New] to succeed.
func WithTarget(t Target) Option {
	return func(cfg *watcherConfig) error {
		if cfg.target != nil {
			return errors.New("target already set (seatwatch watches a single target)")
		}
		cfg.target = &t
		return nil
	}
}

// WithInterval sets the wait between the end of one check cycle and
// the start of the next.
//
// The interval is measured from cycle completion, not cycle start, so
// checks never overlap. Defaults to 5 minutes if not specified.
//
// Example:
//
//	w, err := seatwatch.New(
//	    seatwatch.WithTarget(target),
//	    seatwatch.WithInterval(30 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *watcherConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithLabel sets the metric label used in report lines and on the
// status page. Defaults to "Sold seats".
//
// Example:
//
//	w, err := seatwatch.New(
//	    seatwatch.WithTarget(target),
//	    seatwatch.WithLabel("Reserved seats"),
//	)
func WithLabel(label string) Option {
	return func(cfg *watcherConfig) error {
		if label == "" {
			return errors.New("label cannot be empty")
		}
		cfg.label = label
		return nil
	}
}

// WithStatusPort enables the local status server on the given port.
//
// The status server exposes the latest sample, recent history, a
// Server-Sent Events stream, and a small embedded status page. When
// this option is not used, no server is started and seatwatch is a
// pure console tool.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithStatusPort(port int) Option {
	return func(cfg *watcherConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("status port must be between 1 and 65535")
		}
		cfg.statusPort = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the watcher.
//
// The logger carries operational events (lifecycle transitions,
// extractor panics); the human-facing report lines go to the writers
// configured with [WithOutput]. If not specified, [slog.Default] is
// used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *watcherConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithOutput sets the writers for report lines and error lines.
//
// Defaults to [os.Stdout] and [os.Stderr]. Tests use this to capture
// console output.
//
// Returns an error if either writer is nil.
func WithOutput(out, errOut io.Writer) Option {
	return func(cfg *watcherConfig) error {
		if out == nil || errOut == nil {
			return errors.New("output writers cannot be nil")
		}
		cfg.out = out
		cfg.errOut = errOut
		return nil
	}
}

// WithSampleCallback registers a function to be called after every
// completed check cycle, successful or failed.
//
// Multiple callbacks may be registered by calling WithSampleCallback
// multiple times; they execute in registration order after the sample
// has been stored.
//
// Callbacks must be non-blocking: they run synchronously on the
// result-processing goroutine, so long-running work should be
// dispatched elsewhere. Panics within callbacks are recovered and
// logged; they do not stop the watcher.
//
// Example:
//
//	w, err := seatwatch.New(
//	    seatwatch.WithTarget(target),
//	    seatwatch.WithSampleCallback(func(s seatwatch.Sample) {
//	        if s.Err == nil && s.Previous != nil && s.Delta > 10 {
//	            log.Printf("big jump: %+d", s.Delta)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithSampleCallback(cb func(Sample)) Option {
	return func(cfg *watcherConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.sampleCallbacks = append(cfg.sampleCallbacks, cb)
		return nil
	}
}
