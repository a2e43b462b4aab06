package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/seatwatch"
)

// BuildTarget converts the parsed target configuration into an SDK
// [seatwatch.Target].
func BuildTarget(cfg *Config) (seatwatch.Target, error) {
	tc := cfg.Target

	opts := []seatwatch.TargetOption{
		seatwatch.WithQuery(tc.Query),
	}

	if tc.Timeout != 0 {
		opts = append(opts, seatwatch.WithTimeout(tc.Timeout.Duration()))
	}

	if len(tc.Headers) > 0 {
		opts = append(opts, seatwatch.WithHeaders(mapToKeyValuePairs(tc.Headers)...))
	}

	target, err := seatwatch.NewTarget(tc.Name, tc.URL, opts...)
	if err != nil {
		return seatwatch.Target{}, fmt.Errorf("target (%s): %w", tc.Name, err)
	}
	return target, nil
}

// BuildOptions converts the parsed configuration into SDK watcher
// options, including the target itself.
func BuildOptions(cfg *Config) ([]seatwatch.Option, error) {
	target, err := BuildTarget(cfg)
	if err != nil {
		return nil, err
	}

	opts := []seatwatch.Option{
		seatwatch.WithTarget(target),
		seatwatch.WithInterval(cfg.Interval.Duration()),
		seatwatch.WithLabel(cfg.Label),
	}

	if cfg.StatusPort != 0 {
		opts = append(opts, seatwatch.WithStatusPort(cfg.StatusPort))
	}

	return opts, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value
// pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
