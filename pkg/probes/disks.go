package probes

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/openfacts/openfacts/pkg/facts"
)

// DiskGroup resolves the filesystem cluster: one mapping entry per mounted
// filesystem plus the list of filesystem types in use.
type DiskGroup struct{}

func (g *DiskGroup) Name() string { return "disks" }

func (g *DiskGroup) FactNames() []string {
	return []string{"mountpoints", "filesystems"}
}

func (g *DiskGroup) Populate(ctx context.Context, c *facts.Collection) error {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return fmt.Errorf("disk probe failed: %w", err)
	}

	mountpoints := facts.NewMapping()
	fstypes := make(map[string]bool)

	for _, partition := range partitions {
		fstypes[partition.Fstype] = true

		entry := facts.NewMapping()
		entry.Set("device", partition.Device)
		entry.Set("filesystem", partition.Fstype)

		// Usage can fail per-mount (stale NFS, permissions); the entry
		// keeps its identity facts either way.
		if usage, err := disk.UsageWithContext(ctx, partition.Mountpoint); err == nil {
			entry.Set("size_bytes", int64(usage.Total))
			entry.Set("used_bytes", int64(usage.Used))
			entry.Set("available_bytes", int64(usage.Free))
			entry.Set("capacity", fmt.Sprintf("%.2f%%", usage.UsedPercent))
		}

		mountpoints.Set(partition.Mountpoint, entry)
	}

	names := make([]any, 0, len(fstypes))
	sorted := make([]string, 0, len(fstypes))
	for name := range fstypes {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		names = append(names, name)
	}

	c.Add("mountpoints", mountpoints)
	c.Add("filesystems", names)
	return nil
}
