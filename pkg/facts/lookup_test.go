package facts

import "testing"

func nestedRoot() *Value {
	release := NewMapping()
	release.Set("full", "6.8.0-45")
	release.Set("major", int64(6))

	os := NewMapping()
	os.Set("name", "Ubuntu")
	os.Set("release", release)
	os.Set("mounts", []any{"/", "/boot", "/var"})
	return NewValue(os)
}

func TestLookupSequenceIndexing(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     any
		found    bool
	}{
		{
			name:     "valid index",
			segments: []string{"1"},
			want:     int64(20),
			found:    true,
		},
		{
			name:     "out of range index",
			segments: []string{"5"},
			found:    false,
		},
		{
			name:     "negative index",
			segments: []string{"-1"},
			found:    false,
		},
		{
			name:     "non-integral segment",
			segments: []string{"first"},
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewValue([]any{int64(10), int64(20), int64(30)})
			got, found := Lookup(root, tt.segments)
			if found != tt.found {
				t.Fatalf("Lookup() found = %v, want %v", found, tt.found)
			}
			if found && got.Data() != tt.want {
				t.Errorf("Lookup() = %v, want %v", got.Data(), tt.want)
			}
		})
	}
}

func TestLookupEmptySequence(t *testing.T) {
	root := NewValue([]any{})
	if _, found := Lookup(root, []string{"0"}); found {
		t.Error("Lookup() on an empty sequence should not resolve")
	}
}

func TestLookupFailureDoesNotPoisonCache(t *testing.T) {
	root := NewValue([]any{int64(10), int64(20), int64(30)})
	if _, found := Lookup(root, []string{"5"}); found {
		t.Fatal("expected out-of-range lookup to fail")
	}
	if root.child("5") != nil {
		t.Error("failed lookup must not insert a cache entry")
	}
}

func TestLookupReturnsCachedChild(t *testing.T) {
	root := nestedRoot()

	first, found := Lookup(root, []string{"release", "full"})
	if !found {
		t.Fatal("expected lookup to resolve")
	}
	second, found := Lookup(root, []string{"release", "full"})
	if !found {
		t.Fatal("expected cached lookup to resolve")
	}
	if first != second {
		t.Error("second lookup must return the identical cached child")
	}
	if first.Key() != "release.full" {
		t.Errorf("child key = %q, want %q", first.Key(), "release.full")
	}
}

func TestLookupMappingKeys(t *testing.T) {
	root := nestedRoot()

	got, found := Lookup(root, []string{"name"})
	if !found || got.Data() != "Ubuntu" {
		t.Errorf("Lookup(name) = %v, %v", got, found)
	}

	got, found = Lookup(root, []string{"release", "major"})
	if !found || got.Data() != int64(6) {
		t.Errorf("Lookup(release.major) = %v, %v", got, found)
	}

	if _, found = Lookup(root, []string{"absent"}); found {
		t.Error("Lookup(absent) should not resolve")
	}
}

func TestLookupSymbolicKeyFallback(t *testing.T) {
	m := NewMapping()
	m.SetSymbol("foo", int64(1))
	root := NewValue(m)

	got, found := Lookup(root, []string{"foo"})
	if !found || got.Data() != int64(1) {
		t.Errorf("Lookup(foo) = %v, %v; want symbolic fallback to resolve", got, found)
	}
}

func TestLookupMixedContainers(t *testing.T) {
	root := nestedRoot()

	got, found := Lookup(root, []string{"mounts", "2"})
	if !found || got.Data() != "/var" {
		t.Errorf("Lookup(mounts.2) = %v, %v", got, found)
	}
}

func TestLookupQuotedSegmentKey(t *testing.T) {
	inner := NewMapping()
	inner.Set("b.c", int64(42))
	m := NewMapping()
	m.Set("a", inner)
	root := NewValue(m)

	got, found := Lookup(root, []string{"a", "b.c"})
	if !found {
		t.Fatal("expected lookup to resolve")
	}
	if got.Key() != `a."b.c"` {
		t.Errorf("cache key = %q, want %q", got.Key(), `a."b.c"`)
	}
	if root.child(`a."b.c"`) != got {
		t.Error("child not cached under the quoted key")
	}
}

// A scalar mid-path does not consume the segment: the reference engine logs
// and keeps going, so trailing segments resolve to the scalar itself. The
// behavior is intentionally preserved for compatibility.
func TestLookupScalarContainerQuirk(t *testing.T) {
	m := NewMapping()
	m.Set("version", "1.2.3")
	root := NewValue(m)

	got, found := Lookup(root, []string{"version", "major"})
	if !found {
		t.Fatal("expected quirk path to resolve")
	}
	if got.Data() != "1.2.3" {
		t.Errorf("Lookup(version.major) = %v, want the scalar itself", got.Data())
	}
}

func TestLookupNilAndEmptyInputs(t *testing.T) {
	if _, found := Lookup(nil, []string{"a"}); found {
		t.Error("Lookup(nil root) should not resolve")
	}
	if _, found := Lookup(NewValue("x"), nil); found {
		t.Error("Lookup with no segments should not resolve")
	}
}
