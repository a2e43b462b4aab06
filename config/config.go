// Package config provides YAML configuration parsing for seatwatch.
//
// This package enables running seatwatch as a standalone binary with
// a configuration file, as an alternative to flags or the
// programmatic SDK approach.
//
// Example configuration:
//
//	label: Sold seats
//	interval: 5m
//	status_port: 8080
//
//	target:
//	  name: Box Office
//	  url: https://seatmap.example.com/v1/events/4821/seats?key=${SEATMAP_KEY}
//	  timeout: 10s
//	  query: count:seats[3]=SOLD
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/seatwatch"
)

// minInterval is the minimum allowed polling interval. This prevents
// accidental DoS of the endpoint with overly aggressive polling.
const minInterval = 1 * time.Second

// Config is the root configuration structure for seatwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Label is the metric label shown in report lines and on the
	// status page. Defaults to "Sold seats" if not set.
	Label string `yaml:"label"`

	// Interval is the wait between check cycles.
	// Accepts duration strings like "30s", "5m", "1h30m".
	// Defaults to 5m.
	Interval Duration `yaml:"interval"`

	// StatusPort enables the local status server on the given port.
	// Zero (the default) leaves the server disabled.
	StatusPort int `yaml:"status_port"`

	// Target describes the endpoint to watch and the query to
	// evaluate against its responses.
	Target TargetConfig `yaml:"target"`
}

// TargetConfig describes the watched endpoint.
type TargetConfig struct {
	// Name is the display name used in samples and logs.
	Name string `yaml:"name"`

	// URL is the fully qualified endpoint URL, including any event
	// identifier and access key as query parameters.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Timeout is the per-request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Query is the metric query expression in the shorthand syntax
	// understood by seatwatch.ParseQuery, e.g. "count:seats[3]=SOLD".
	Query string `yaml:"query"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the target URL and header
// values. Defaults are applied for Label ("Sold seats") and Interval
// (5m).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Label == "" {
		cfg.Label = "Sold seats"
	}
	if cfg.Interval == 0 {
		cfg.Interval = Duration(5 * time.Minute)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the
// config.
func (c *Config) expandAndValidate() error {
	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}

	if c.StatusPort != 0 && (c.StatusPort < 1 || c.StatusPort > 65535) {
		return fmt.Errorf("status_port must be between 1 and 65535, got %d", c.StatusPort)
	}

	t := &c.Target

	if t.Name == "" {
		return fmt.Errorf("target: name is required")
	}

	if t.URL == "" {
		return fmt.Errorf("target (%s): url is required", t.Name)
	}
	expanded, err := expandEnvVars(t.URL)
	if err != nil {
		return fmt.Errorf("target (%s): url: %w", t.Name, err)
	}
	t.URL = expanded

	parsedURL, err := url.Parse(t.URL)
	if err != nil {
		return fmt.Errorf("target (%s): invalid url: %w", t.Name, err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("target (%s): url must have a scheme (http:// or https://)", t.Name)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("target (%s): url scheme must be http or https, got %q", t.Name, parsedURL.Scheme)
	}

	for k, v := range t.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("target (%s): headers[%s]: %w", t.Name, k, err)
		}
		t.Headers[k] = expanded
	}

	if t.Timeout != 0 {
		if t.Timeout.Duration() < 0 {
			return fmt.Errorf("target (%s): timeout cannot be negative, got %s", t.Name, t.Timeout.Duration())
		}
		if t.Timeout.Duration() < time.Second {
			return fmt.Errorf("target (%s): timeout must be at least 1s if specified, got %s", t.Name, t.Timeout.Duration())
		}
	}

	if t.Query == "" {
		return fmt.Errorf("target (%s): query is required", t.Name)
	}
	// fail fast before the SDK tries to use an invalid expression
	if _, err := seatwatch.ParseQuery(t.Query); err != nil {
		return fmt.Errorf("target (%s): %w", t.Name, err)
	}

	return nil
}
