package facts

import (
	"context"
	"errors"
	"testing"
)

// fakeGroup counts collection passes so tests can assert the once-per-reset
// contract.
type fakeGroup struct {
	name      string
	factNames []string
	values    map[string]any
	err       error
	populates int
}

func (g *fakeGroup) Name() string        { return g.name }
func (g *fakeGroup) FactNames() []string { return g.factNames }

func (g *fakeGroup) Populate(_ context.Context, c *Collection) error {
	g.populates++
	for name, data := range g.values {
		c.Add(name, data)
	}
	return g.err
}

func newMemoryGroup() *fakeGroup {
	return &fakeGroup{
		name:      "memory",
		factNames: []string{"memorysize_mb", "swapsize_mb"},
		values: map[string]any{
			"memorysize_mb": int64(16384),
			"swapsize_mb":   int64(2048),
		},
	}
}

func TestCollectionResolvesGroupOnce(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	group := newMemoryGroup()
	c.AddGroup(group)

	if v := c.Resolve(ctx, "memorysize_mb"); v == nil || v.Data() != int64(16384) {
		t.Fatalf("Resolve(memorysize_mb) = %v", v)
	}
	if v := c.Resolve(ctx, "swapsize_mb"); v == nil || v.Data() != int64(2048) {
		t.Fatalf("Resolve(swapsize_mb) = %v", v)
	}
	if v := c.Resolve(ctx, "memorysize_mb"); v == nil {
		t.Fatal("repeat Resolve(memorysize_mb) = nil")
	}
	if group.populates != 1 {
		t.Errorf("group populated %d times, want exactly 1", group.populates)
	}
}

func TestCollectionResetRerunsGroup(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	group := newMemoryGroup()
	c.AddGroup(group)

	c.Resolve(ctx, "memorysize_mb")
	c.Reset()
	if c.Size() != 0 {
		t.Fatalf("Size() after reset = %d, want 0", c.Size())
	}
	if v := c.Resolve(ctx, "memorysize_mb"); v == nil {
		t.Fatal("Resolve after reset = nil")
	}
	if group.populates != 2 {
		t.Errorf("group populated %d times, want 2 after reset", group.populates)
	}
}

func TestCollectionMissingFactYieldsNil(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	group := &fakeGroup{
		name:      "sparse",
		factNames: []string{"present", "advertised_but_absent"},
		values:    map[string]any{"present": "yes"},
	}
	c.AddGroup(group)

	if v := c.Resolve(ctx, "advertised_but_absent"); v != nil {
		t.Errorf("Resolve(advertised_but_absent) = %v, want nil", v)
	}
	// The group pass already ran; a second miss must not re-run it.
	if v := c.Resolve(ctx, "advertised_but_absent"); v != nil {
		t.Errorf("repeat Resolve(advertised_but_absent) = %v, want nil", v)
	}
	if group.populates != 1 {
		t.Errorf("group populated %d times, want 1", group.populates)
	}

	if v := c.Resolve(ctx, "unknown_fact"); v != nil {
		t.Errorf("Resolve(unknown_fact) = %v, want nil", v)
	}
}

func TestCollectionGroupErrorIsSoft(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	c.AddGroup(&fakeGroup{
		name:      "broken",
		factNames: []string{"broken_fact"},
		err:       errors.New("probe unavailable"),
	})

	if v := c.Resolve(ctx, "broken_fact"); v != nil {
		t.Errorf("Resolve(broken_fact) = %v, want nil", v)
	}
}

func TestCollectionResolveAll(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	memory := newMemoryGroup()
	kernel := &fakeGroup{
		name:      "kernel",
		factNames: []string{"kernel"},
		values:    map[string]any{"kernel": "Linux"},
	}
	c.AddGroup(memory)
	c.AddGroup(kernel)

	c.ResolveAll(ctx)

	want := []string{"kernel", "memorysize_mb", "swapsize_mb"}
	got := c.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
	if memory.populates != 1 || kernel.populates != 1 {
		t.Errorf("populates = %d/%d, want 1/1", memory.populates, kernel.populates)
	}
}

func TestCollectionQuery(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()

	system := NewMapping()
	system.Set("total", int64(16384))
	m := NewMapping()
	m.Set("system", system)
	c.Add("memory", m)
	c.Add("kernel", "Linux")

	tests := []struct {
		name  string
		query string
		want  any
		found bool
	}{
		{name: "bare fact", query: "kernel", want: "Linux", found: true},
		{name: "nested path", query: "memory.system.total", want: int64(16384), found: true},
		{name: "missing fact", query: "nope", found: false},
		{name: "missing path", query: "memory.system.free", found: false},
		{name: "empty query", query: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := c.Query(ctx, tt.query)
			if found != tt.found {
				t.Fatalf("Query(%q) found = %v, want %v", tt.query, found, tt.found)
			}
			if found && got.Data() != tt.want {
				t.Errorf("Query(%q) = %v, want %v", tt.query, got.Data(), tt.want)
			}
		})
	}
}

func TestCollectionObserver(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	c.AddGroup(newMemoryGroup())

	var events []string
	c.SetObserver(observerFunc(func(group string, err error) {
		events = append(events, group)
	}))

	c.Resolve(ctx, "memorysize_mb")
	c.Resolve(ctx, "swapsize_mb")

	if len(events) != 1 || events[0] != "memory" {
		t.Errorf("observer events = %v, want a single memory event", events)
	}
}

type observerFunc func(group string, err error)

func (f observerFunc) GroupResolved(group string, err error) { f(group, err) }
