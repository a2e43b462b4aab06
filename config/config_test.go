package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
target:
  name: Box Office
  url: https://example.com/seats
  query: count:seats[3]=SOLD
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Label != "Sold seats" {
		t.Errorf("Label = %q, want %q", cfg.Label, "Sold seats")
	}
	if cfg.Interval.Duration() != 5*time.Minute {
		t.Errorf("Interval = %v, want 5m", cfg.Interval.Duration())
	}
	if cfg.StatusPort != 0 {
		t.Errorf("StatusPort = %d, want 0 (disabled)", cfg.StatusPort)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
label: Reserved seats
interval: 30s
status_port: 9090

target:
  name: Main Hall
  url: https://api.example.com/v1/events/99/seats
  timeout: 5s
  headers:
    Authorization: Bearer token123
    X-Custom: value
  query: count:seats.state=RESERVED
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Label != "Reserved seats" {
		t.Errorf("Label = %q, want %q", cfg.Label, "Reserved seats")
	}
	if cfg.Interval.Duration() != 30*time.Second {
		t.Errorf("Interval = %v, want 30s", cfg.Interval.Duration())
	}
	if cfg.StatusPort != 9090 {
		t.Errorf("StatusPort = %d, want 9090", cfg.StatusPort)
	}

	tc := cfg.Target
	if tc.Name != "Main Hall" {
		t.Errorf("Name = %q, want %q", tc.Name, "Main Hall")
	}
	if tc.URL != "https://api.example.com/v1/events/99/seats" {
		t.Errorf("URL = %q", tc.URL)
	}
	if tc.Timeout.Duration() != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", tc.Timeout.Duration())
	}
	if tc.Headers["Authorization"] != "Bearer token123" {
		t.Errorf("Headers[Authorization] = %q, want %q", tc.Headers["Authorization"], "Bearer token123")
	}
	if tc.Query != "count:seats.state=RESERVED" {
		t.Errorf("Query = %q", tc.Query)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("target: [not a map"))
	if err == nil {
		t.Fatal("Parse() should fail on invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v, want YAML parse error", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	yaml := `
interval: not-a-duration
target:
  name: T
  url: https://example.com
  query: len:seats
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() should fail on invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v, want invalid duration error", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing target name",
			yaml: `
target:
  url: https://example.com
  query: len:seats
`,
			wantErr: "name is required",
		},
		{
			name: "missing url",
			yaml: `
target:
  name: T
  query: len:seats
`,
			wantErr: "url is required",
		},
		{
			name: "missing query",
			yaml: `
target:
  name: T
  url: https://example.com
`,
			wantErr: "query is required",
		},
		{
			name: "invalid query expression",
			yaml: `
target:
  name: T
  url: https://example.com
  query: bogus
`,
			wantErr: "query",
		},
		{
			name: "url without scheme",
			yaml: `
target:
  name: T
  url: example.com/seats
  query: len:seats
`,
			wantErr: "scheme",
		},
		{
			name: "url with unsupported scheme",
			yaml: `
target:
  name: T
  url: ftp://example.com/seats
  query: len:seats
`,
			wantErr: "scheme must be http or https",
		},
		{
			name: "interval below minimum",
			yaml: `
interval: 500ms
target:
  name: T
  url: https://example.com
  query: len:seats
`,
			wantErr: "interval must be at least",
		},
		{
			name: "timeout below one second",
			yaml: `
target:
  name: T
  url: https://example.com
  timeout: 100ms
  query: len:seats
`,
			wantErr: "timeout must be at least 1s",
		},
		{
			name: "status port out of range",
			yaml: `
status_port: 70000
target:
  name: T
  url: https://example.com
  query: len:seats
`,
			wantErr: "status_port must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_EnvVarExpansion(t *testing.T) {
	t.Setenv("SEATMAP_KEY", "pk_test_123")

	yaml := `
target:
  name: T
  url: https://example.com/seats?key=${SEATMAP_KEY}
  query: len:seats
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Target.URL != "https://example.com/seats?key=pk_test_123" {
		t.Errorf("URL = %q, env var not expanded", cfg.Target.URL)
	}
}

func TestParse_EnvVarInHeaders(t *testing.T) {
	t.Setenv("API_TOKEN", "secret")

	yaml := `
target:
  name: T
  url: https://example.com
  headers:
    Authorization: Bearer ${API_TOKEN}
  query: len:seats
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cfg.Target.Headers["Authorization"]; got != "Bearer secret" {
		t.Errorf("Headers[Authorization] = %q, want %q", got, "Bearer secret")
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
target:
  name: T
  url: https://${SEATWATCH_TEST_HOST:-example.com}/seats
  query: len:seats
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Target.URL != "https://example.com/seats" {
		t.Errorf("URL = %q, default not applied", cfg.Target.URL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	yaml := `
target:
  name: T
  url: https://example.com/seats?key=${SEATWATCH_TEST_MISSING_VAR}
  query: len:seats
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() should fail on missing env var without default")
	}
	if !strings.Contains(err.Error(), "SEATWATCH_TEST_MISSING_VAR") {
		t.Errorf("error = %v, should name the missing variable", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SW_FOO", "foo-value")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "no variables", in: "plain string", want: "plain string"},
		{name: "set variable", in: "x=${SW_FOO}", want: "x=foo-value"},
		{name: "set variable ignores default", in: "${SW_FOO:-other}", want: "foo-value"},
		{name: "unset with default", in: "${SW_UNSET_VAR:-fallback}", want: "fallback"},
		{name: "unset with empty default", in: "${SW_UNSET_VAR:-}", want: ""},
		{name: "unset without default", in: "${SW_UNSET_VAR}", wantErr: true},
		{name: "multiple variables", in: "${SW_FOO}/${SW_UNSET_VAR:-x}", want: "foo-value/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/seatwatch.yaml")
	if err == nil {
		t.Fatal("Load() should fail on missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %v, want read error", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	yaml := `
interval: 1m
target:
  name: Box Office
  url: https://example.com/seats
  query: count:seats[3]=SOLD
`
	path := filepath.Join(t.TempDir(), "seatwatch.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Interval.Duration() != time.Minute {
		t.Errorf("Interval = %v, want 1m", cfg.Interval.Duration())
	}
	if cfg.Target.Name != "Box Office" {
		t.Errorf("Target.Name = %q, want %q", cfg.Target.Name, "Box Office")
	}
}
