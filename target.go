package seatwatch

import (
	"errors"
	"net/url"
	"time"
)

const defaultTargetTimeout = 10 * time.Second

// Target represents the remote JSON endpoint to watch.
//
// Target is immutable after creation via [NewTarget]. All fields are
// private with getter methods that return copies of mutable data
// (maps), ensuring the target cannot be modified after construction.
//
// Targets are configured using the functional options pattern with
// [TargetOption] functions such as [WithQuery], [WithExtractor],
// [WithHeaders], and [WithTimeout].
type Target struct {
	name      string
	url       string
	headers   map[string]string
	timeout   time.Duration
	extractor MetricExtractor
	query     string
}

// Name returns the target's display name, used in samples and logs.
func (t Target) Name() string {
	return t.name
}

// URL returns the target's fully qualified URL as a string. Any
// identifier or access key travels as query parameters inside it.
func (t Target) URL() string {
	return t.url
}

// Headers returns a copy of the target's custom HTTP headers.
// These headers are sent with every poll request. Returns nil if no
// custom headers are set.
func (t Target) Headers() map[string]string {
	return copyMap(t.headers)
}

// Timeout returns the target's HTTP request timeout.
// Defaults to 10 seconds if not explicitly set via [WithTimeout].
func (t Target) Timeout() time.Duration {
	return t.timeout
}

// Extractor returns the target's [MetricExtractor] function.
// Returns nil if neither [WithQuery] nor [WithExtractor] was used;
// the watcher rejects such targets at construction.
func (t Target) Extractor() MetricExtractor {
	return t.extractor
}

// Query returns the human-readable query expression for this target.
// For targets built with [WithExtractor] it returns "custom". The
// value appears in the startup banner and the status API.
func (t Target) Query() string {
	return t.query
}

// NewTarget creates a [Target] with the given name, URL, and options.
//
// The name parameter is a human-readable identifier shown in reports.
// The rawURL parameter must be a valid URL with an http or https
// scheme. A query must be attached via [WithQuery] or [WithExtractor].
//
// Example:
//
//	target, err := seatwatch.NewTarget("Box Office", eventURL,
//	    seatwatch.WithQuery("count:seats[3]=SOLD"),
//	    seatwatch.WithTimeout(5 * time.Second),
//	)
func NewTarget(name, rawURL string, opts ...TargetOption) (Target, error) {
	if name == "" {
		return Target{}, errors.New("target name cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Target{}, errors.New("URL must have an http:// or https:// scheme")
	}

	cfg := &targetConfig{
		headers: make(map[string]string),
		timeout: defaultTargetTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Target{}, err
		}
	}

	return Target{
		name:      name,
		url:       rawURL,
		headers:   cfg.headers,
		timeout:   cfg.timeout,
		extractor: cfg.extractor,
		query:     cfg.query,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
