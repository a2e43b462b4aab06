package seatwatch

import (
	"errors"
	"time"
)

// targetConfig holds mutable state during target construction.
type targetConfig struct {
	headers   map[string]string
	timeout   time.Duration
	extractor MetricExtractor
	query     string
}

// TargetOption is a function that configures a [Target] during
// construction.
//
// TargetOption implements the functional options pattern, allowing
// optional configuration to be passed to [NewTarget] in a type-safe,
// extensible way. Options return an error if validation fails.
//
// Built-in options: [WithQuery], [WithExtractor], [WithHeaders],
// [WithTimeout].
type TargetOption func(*targetConfig) error

// WithQuery attaches a shorthand query expression to the target.
//
// The expression is compiled with [ParseQuery]; see its documentation
// for the supported forms. The original expression string is kept and
// shown in the startup banner.
//
// Example:
//
//	target, err := seatwatch.NewTarget("Box Office", url,
//	    seatwatch.WithQuery("count:seats[3]=SOLD"),
//	)
//
// Returns an error if the expression does not parse.
func WithQuery(expr string) TargetOption {
	return func(cfg *targetConfig) error {
		extractor, err := ParseQuery(expr)
		if err != nil {
			return err
		}
		cfg.extractor = extractor
		cfg.query = expr
		return nil
	}
}

// WithExtractor sets a custom [MetricExtractor] for the target.
//
// Use this when the shorthand query syntax cannot express the metric.
// The query expression reported in logs becomes "custom".
//
// Example:
//
//	target, err := seatwatch.NewTarget("Box Office", url,
//	    seatwatch.WithExtractor(func(body []byte) (int64, error) {
//	        // bespoke decoding
//	    }),
//	)
//
// Returns an error if the extractor is nil.
func WithExtractor(e MetricExtractor) TargetOption {
	return func(cfg *targetConfig) error {
		if e == nil {
			return errors.New("extractor cannot be nil")
		}
		cfg.extractor = e
		cfg.query = "custom"
		return nil
	}
}

// WithHeaders adds custom HTTP headers to poll requests.
//
// Use this for endpoints that authenticate via headers instead of URL
// query parameters. Accepts variadic key-value pairs; the number of
// arguments must be even.
//
// Example:
//
//	target, err := seatwatch.NewTarget("Box Office", url,
//	    seatwatch.WithHeaders("Authorization", "Bearer token123"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) TargetOption {
	return func(cfg *targetConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout sets the HTTP request timeout for the target.
//
// If the endpoint does not respond within this duration, the in-flight
// request is aborted and the check cycle fails with a timeout error.
// Defaults to 10 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) TargetOption {
	return func(cfg *targetConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}
