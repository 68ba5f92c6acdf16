package probes

import (
	"context"
	"runtime"
	"testing"

	"github.com/openfacts/openfacts/pkg/facts"
)

func TestRegisterWiresGroupsIntoCollection(t *testing.T) {
	c := facts.NewCollection()
	Register(c)

	// Resolving a system fact through the collection must trigger the
	// owning group's probe pass.
	if v := c.Resolve(context.Background(), "kernel"); v == nil {
		t.Error("Resolve(kernel) = nil, want the system group to supply it")
	}
}

func TestGroupNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, g := range Groups() {
		if seen[g.Name()] {
			t.Errorf("duplicate group name %q", g.Name())
		}
		seen[g.Name()] = true
	}
}

func TestSystemGroupPopulate(t *testing.T) {
	ctx := context.Background()
	c := facts.NewCollection()
	if err := (&SystemGroup{}).Populate(ctx, c); err != nil {
		t.Fatalf("Populate() error: %v", err)
	}

	kernel := c.Resolve(ctx, "kernel")
	if kernel == nil {
		t.Fatal("Resolve(kernel) = nil")
	}
	if runtime.GOOS == "linux" && kernel.Data() != "Linux" {
		t.Errorf("Resolve(kernel) = %v, want Linux", kernel.Data())
	}

	if v, found := c.Query(ctx, "os.release.full"); !found || v.Data() == "" {
		t.Errorf("Query(os.release.full) = %v, %v", v, found)
	}
	if v, found := c.Query(ctx, "uptime.seconds"); !found {
		t.Errorf("Query(uptime.seconds) = %v, %v", v, found)
	}
}

func TestMemoryGroupPopulate(t *testing.T) {
	ctx := context.Background()
	c := facts.NewCollection()
	if err := (&MemoryGroup{}).Populate(ctx, c); err != nil {
		t.Fatalf("Populate() error: %v", err)
	}

	size := c.Resolve(ctx, "memorysize_mb")
	if size == nil {
		t.Fatal("Resolve(memorysize_mb) = nil")
	}
	if mb, ok := size.Data().(int64); !ok || mb <= 0 {
		t.Errorf("memorysize_mb = %v, want a positive size", size.Data())
	}
	if v, found := c.Query(ctx, "memory.system.total_bytes"); !found {
		t.Errorf("Query(memory.system.total_bytes) = %v, %v", v, found)
	}
}

func TestProcessorGroupPopulate(t *testing.T) {
	ctx := context.Background()
	c := facts.NewCollection()
	if err := (&ProcessorGroup{}).Populate(ctx, c); err != nil {
		t.Fatalf("Populate() error: %v", err)
	}

	if v, found := c.Query(ctx, "processors.count"); !found {
		t.Fatalf("Query(processors.count) = %v, %v", v, found)
	} else if count, ok := v.Data().(int64); !ok || count < 1 {
		t.Errorf("processors.count = %v, want >= 1", v.Data())
	}
}

func TestDiskGroupPopulate(t *testing.T) {
	ctx := context.Background()
	c := facts.NewCollection()
	if err := (&DiskGroup{}).Populate(ctx, c); err != nil {
		t.Fatalf("Populate() error: %v", err)
	}

	if v := c.Resolve(ctx, "mountpoints"); v == nil || v.Kind() != facts.KindMapping {
		t.Errorf("Resolve(mountpoints) = %v, want a mapping", v)
	}
	if v := c.Resolve(ctx, "filesystems"); v == nil || v.Kind() != facts.KindSequence {
		t.Errorf("Resolve(filesystems) = %v, want a sequence", v)
	}
}

func TestNetworkGroupPopulate(t *testing.T) {
	ctx := context.Background()
	c := facts.NewCollection()
	if err := (&NetworkGroup{}).Populate(ctx, c); err != nil {
		t.Fatalf("Populate() error: %v", err)
	}

	if v, found := c.Query(ctx, "networking.interfaces"); !found || v.Kind() != facts.KindMapping {
		t.Errorf("Query(networking.interfaces) = %v, %v, want a mapping", v, found)
	}
}

func TestLoadGroupPopulate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("load averages are not available on windows")
	}
	ctx := context.Background()
	c := facts.NewCollection()
	if err := (&LoadGroup{}).Populate(ctx, c); err != nil {
		t.Fatalf("Populate() error: %v", err)
	}
	if _, found := c.Query(ctx, "load_averages.1m"); !found {
		t.Error("Query(load_averages.1m) not found")
	}
}
