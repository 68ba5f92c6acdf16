package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}
	return l
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	l := newTestLoader(t)

	cfg, err := l.Load(filepath.Join(t.TempDir(), "absent.cue"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Telemetry.LogLevel != "info" {
		t.Errorf("default log level = %q, want info", cfg.Telemetry.LogLevel)
	}
	if cfg.Cache.Path == "" {
		t.Error("default cache path should be set")
	}
}

func TestLoadFullConfig(t *testing.T) {
	l := newTestLoader(t)

	content := `
facts: {
	blocklist: ["networking"]
	custom_dirs: ["/opt/facts"]
	external_dirs: ["/etc/facts.d"]
}
cache: {
	enabled: true
	path: "/tmp/facts.db"
	group_ttls: {
		system: "1h"
		disks:  "5m"
	}
}
framework: root: "/opt/framework"
telemetry: {
	log_level: "debug"
	log_format: "json"
}
`
	path := filepath.Join(t.TempDir(), "openfacts.cue")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Facts.Blocklist) != 1 || cfg.Facts.Blocklist[0] != "networking" {
		t.Errorf("blocklist = %v", cfg.Facts.Blocklist)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Path != "/tmp/facts.db" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if got := cfg.Cache.GroupTTLs["system"].Std(); got != time.Hour {
		t.Errorf("system TTL = %v, want 1h", got)
	}
	if cfg.Framework.Root != "/opt/framework" {
		t.Errorf("framework root = %q", cfg.Framework.Root)
	}
	if cfg.Telemetry.LogLevel != "debug" || cfg.Telemetry.LogFormat != "json" {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
	// Untouched fields keep their defaults
	if cfg.Telemetry.MetricsAddress != ":9465" {
		t.Errorf("metrics address = %q, want default", cfg.Telemetry.MetricsAddress)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	l := newTestLoader(t)

	_, err := l.LoadBytes([]byte(`telemetry: log_level: "verbose"`), "bad.cue")
	if err == nil {
		t.Fatal("LoadBytes() should reject an unknown log level")
	}
}

func TestLoadReportsPosition(t *testing.T) {
	l := newTestLoader(t)

	_, err := l.LoadBytes([]byte("cache: {\n\tenabled: \"yes\"\n}"), "typed.cue")
	if err == nil {
		t.Fatal("LoadBytes() should reject a non-bool enabled flag")
	}
	ve, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if ve.File == "" {
		t.Error("ValidationError should carry the source file")
	}
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"string duration", `"90s"`, 90 * time.Second},
		{"hours", `"2h"`, 2 * time.Hour},
		{"bare seconds", `30`, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			if err := d.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON(%s) error: %v", tt.input, err)
			}
			if d.Std() != tt.want {
				t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, d.Std(), tt.want)
			}
		})
	}
}
