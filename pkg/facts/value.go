package facts

import (
	"sort"
	"strings"
)

// Kind identifies the shape of a dynamic fact value.
type Kind int

const (
	KindNil Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Mapping is a keyed fact value. Keys are strings, but a key may exist in
// either of two representations: plain, or symbolic (the interned key form
// native to the scripting runtime). Lookup tries plain first and falls back
// to symbolic, mirroring how hash facts behave in custom fact code.
type Mapping struct {
	plain   map[string]any
	symbols map[string]any
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{
		plain:   make(map[string]any),
		symbols: make(map[string]any),
	}
}

// Set stores a value under a plain string key.
func (m *Mapping) Set(key string, value any) {
	m.plain[key] = value
}

// SetSymbol stores a value under a symbolic key.
func (m *Mapping) SetSymbol(key string, value any) {
	m.symbols[key] = value
}

// Lookup returns the value for key, trying the plain representation first
// and the symbolic representation second. Absent keys yield nil.
func (m *Mapping) Lookup(key string) any {
	if v, ok := m.plain[key]; ok {
		return v
	}
	if v, ok := m.symbols[key]; ok {
		return v
	}
	return nil
}

// Len returns the number of entries across both key representations.
func (m *Mapping) Len() int {
	return len(m.plain) + len(m.symbols)
}

// Keys returns all keys in sorted order. Symbolic keys shadowed by a plain
// key of the same name are omitted.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, m.Len())
	for k := range m.plain {
		keys = append(keys, k)
	}
	for k := range m.symbols {
		if _, ok := m.plain[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Value is an opaque handle to a dynamic fact value. A root Value owns a
// cache of child Values keyed by resolved path; children reference data
// inside the root's value tree and never outlive it.
type Value struct {
	data     any
	key      string
	children map[string]*Value
}

// NewValue wraps raw fact data as a root value. Supported shapes are nil,
// Go scalars, []any sequences, and *Mapping.
func NewValue(data any) *Value {
	return &Value{data: data}
}

// Kind reports the shape of the wrapped data.
func (v *Value) Kind() Kind {
	switch v.data.(type) {
	case nil:
		return KindNil
	case []any:
		return KindSequence
	case *Mapping:
		return KindMapping
	default:
		return KindScalar
	}
}

// Data returns the raw wrapped data.
func (v *Value) Data() any {
	return v.data
}

// Key returns the path key this value was resolved under. Roots have an
// empty key.
func (v *Value) Key() string {
	return v.key
}

// child returns the cached child for a path key, or nil.
func (v *Value) child(key string) *Value {
	return v.children[key]
}

// wrapChild caches data as a child of v under the given path key and
// returns it. The child holds a reference into v's value tree only; v owns
// the cache entry for its own lifetime.
func (v *Value) wrapChild(data any, key string) *Value {
	child := &Value{data: data, key: key}
	if v.children == nil {
		v.children = make(map[string]*Value)
	}
	v.children[key] = child
	return child
}

// Export converts the value into plain Go data suitable for serialization:
// mappings become map[string]any (symbolic keys flattened, plain keys win
// on collision), sequences become []any, scalars pass through.
func (v *Value) Export() any {
	return exportData(v.data)
}

func exportData(data any) any {
	switch val := data.(type) {
	case *Mapping:
		out := make(map[string]any, val.Len())
		for k, item := range val.symbols {
			out[k] = exportData(item)
		}
		for k, item := range val.plain {
			out[k] = exportData(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = exportData(item)
		}
		return out
	default:
		return val
	}
}

// PathKey builds the canonical cache key for a path: segments joined with
// ".", with any segment that itself contains a "." wrapped in double quotes
// to keep the key unambiguous. ["a", "b.c"] yields `a."b.c"`.
func PathKey(segments []string) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('.')
		}
		if strings.Contains(seg, ".") {
			b.WriteByte('"')
			b.WriteString(seg)
			b.WriteByte('"')
		} else {
			b.WriteString(seg)
		}
	}
	return b.String()
}

// SplitPath parses a dotted query string into path segments, honoring the
// PathKey quoting rule: a double-quoted segment may contain literal dots.
// It is the inverse of PathKey for well-formed keys.
func SplitPath(query string) []string {
	var segments []string
	var cur strings.Builder
	quoted := false
	for _, r := range query {
		switch {
		case r == '"':
			quoted = !quoted
		case r == '.' && !quoted:
			segments = append(segments, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	segments = append(segments, cur.String())
	return segments
}
