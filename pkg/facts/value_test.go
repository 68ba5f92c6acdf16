package facts

import (
	"reflect"
	"testing"
)

func TestPathKey(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{
			name:     "single segment",
			segments: []string{"os"},
			want:     "os",
		},
		{
			name:     "plain segments",
			segments: []string{"os", "release", "major"},
			want:     "os.release.major",
		},
		{
			name:     "segment containing a dot is quoted",
			segments: []string{"a", "b.c"},
			want:     `a."b.c"`,
		},
		{
			name:     "leading quoted segment",
			segments: []string{"b.c", "a"},
			want:     `"b.c".a`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathKey(tt.segments); got != tt.want {
				t.Errorf("PathKey(%v) = %q, want %q", tt.segments, got, tt.want)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "single segment",
			query: "memory",
			want:  []string{"memory"},
		},
		{
			name:  "dotted query",
			query: "memory.system.total",
			want:  []string{"memory", "system", "total"},
		},
		{
			name:  "quoted segment keeps its dot",
			query: `a."b.c"`,
			want:  []string{"a", "b.c"},
		},
		{
			name:  "numeric index segment",
			query: "processors.models.0",
			want:  []string{"processors", "models", "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitPath(tt.query); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitPath(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSplitPathInvertsPathKey(t *testing.T) {
	segments := []string{"networking", "interfaces", "eth0.100", "bindings"}
	key := PathKey(segments)
	if got := SplitPath(key); !reflect.DeepEqual(got, segments) {
		t.Errorf("SplitPath(PathKey(%v)) = %v", segments, got)
	}
}

func TestValueKind(t *testing.T) {
	tests := []struct {
		name string
		data any
		want Kind
	}{
		{name: "nil", data: nil, want: KindNil},
		{name: "string scalar", data: "x86_64", want: KindScalar},
		{name: "int scalar", data: int64(4), want: KindScalar},
		{name: "bool scalar", data: true, want: KindScalar},
		{name: "sequence", data: []any{int64(1)}, want: KindSequence},
		{name: "mapping", data: NewMapping(), want: KindMapping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewValue(tt.data).Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMappingLookupFallsBackToSymbols(t *testing.T) {
	m := NewMapping()
	m.Set("plain", int64(1))
	m.SetSymbol("symbolic", int64(2))
	m.Set("both", "plain wins")
	m.SetSymbol("both", "shadowed")

	if got := m.Lookup("plain"); got != int64(1) {
		t.Errorf("Lookup(plain) = %v", got)
	}
	if got := m.Lookup("symbolic"); got != int64(2) {
		t.Errorf("Lookup(symbolic) = %v, want symbol fallback to resolve", got)
	}
	if got := m.Lookup("both"); got != "plain wins" {
		t.Errorf("Lookup(both) = %v, want plain key to take precedence", got)
	}
	if got := m.Lookup("absent"); got != nil {
		t.Errorf("Lookup(absent) = %v, want nil", got)
	}
}

func TestValueExport(t *testing.T) {
	inner := NewMapping()
	inner.Set("total", int64(16384))
	inner.SetSymbol("unit", "MiB")

	m := NewMapping()
	m.Set("system", inner)
	m.Set("devices", []any{"sda", "sdb"})

	got := NewValue(m).Export()
	want := map[string]any{
		"system": map[string]any{
			"total": int64(16384),
			"unit":  "MiB",
		},
		"devices": []any{"sda", "sdb"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Export() = %#v, want %#v", got, want)
	}
}
