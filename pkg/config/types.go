package config

import (
	"fmt"
	"time"
)

// Config is the top-level openfacts configuration.
type Config struct {
	// Facts controls fact resolution behavior.
	Facts FactsConfig `json:"facts"`

	// Cache controls the persistent fact cache.
	Cache CacheConfig `json:"cache"`

	// Framework points the scripting runtime at an installed framework
	// root. Empty means the default root.
	Framework FrameworkConfig `json:"framework"`

	// Telemetry configures logging, metrics, and tracing.
	Telemetry TelemetryConfig `json:"telemetry"`
}

// FactsConfig controls which facts resolve and where custom and
// external fact sources live.
type FactsConfig struct {
	// Blocklist names fact groups that are never resolved.
	Blocklist []string `json:"blocklist,omitempty"`

	// CustomDirs are extra directories searched for custom fact scripts.
	CustomDirs []string `json:"custom_dirs,omitempty"`

	// ExternalDirs are extra directories searched for external fact files.
	ExternalDirs []string `json:"external_dirs,omitempty"`

	// NoCustomFacts disables the scripting runtime entirely.
	NoCustomFacts bool `json:"no_custom_facts,omitempty"`
}

// CacheConfig controls the persistent fact cache.
type CacheConfig struct {
	// Enabled turns the persistent cache on.
	Enabled bool `json:"enabled,omitempty"`

	// Path is the SQLite database location.
	Path string `json:"path,omitempty"`

	// GroupTTLs maps fact group names to their cache lifetime.
	GroupTTLs map[string]Duration `json:"group_ttls,omitempty"`
}

// FrameworkConfig locates the external framework integration.
type FrameworkConfig struct {
	// Root is the framework installation root.
	Root string `json:"root,omitempty"`
}

// TelemetryConfig configures the observability stack.
type TelemetryConfig struct {
	// LogLevel sets the minimum log level.
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn error fatal"`

	// LogFormat selects console or json log output.
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=console json"`

	// MetricsAddress is the listen address for the metrics endpoint
	// used by the watch command.
	MetricsAddress string `json:"metrics_address,omitempty"`

	// TracingEnabled turns on the stdout trace exporter.
	TracingEnabled bool `json:"tracing_enabled,omitempty"`
}

// Duration wraps time.Duration so CUE configs can write "5m" or "1h".
type Duration time.Duration

// UnmarshalJSON decodes a duration string or a bare number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		parsed, err := time.ParseDuration(s[1 : len(s)-1])
		if err != nil {
			return fmt.Errorf("invalid duration %s: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if _, err := fmt.Sscanf(s, "%g", &seconds); err != nil {
		return fmt.Errorf("invalid duration %s: %w", s, err)
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Path: "/var/cache/openfacts/facts.db",
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			LogFormat:      "console",
			MetricsAddress: ":9465",
		},
	}
}

// ValidationError is one schema or decode failure with its source
// position when known.
type ValidationError struct {
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (e ValidationError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}
