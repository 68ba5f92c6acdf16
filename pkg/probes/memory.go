package probes

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/openfacts/openfacts/pkg/facts"
)

// MemoryGroup resolves the memory cluster: system and swap usage plus the
// flat size facts.
type MemoryGroup struct{}

func (g *MemoryGroup) Name() string { return "memory" }

func (g *MemoryGroup) FactNames() []string {
	return []string{"memory", "memorysize_mb", "swapsize_mb"}
}

func (g *MemoryGroup) Populate(ctx context.Context, c *facts.Collection) error {
	virtual, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fmt.Errorf("memory probe failed: %w", err)
	}

	system := facts.NewMapping()
	system.Set("total_bytes", int64(virtual.Total))
	system.Set("available_bytes", int64(virtual.Available))
	system.Set("used_bytes", int64(virtual.Used))
	system.Set("capacity", fmt.Sprintf("%.2f%%", virtual.UsedPercent))

	memory := facts.NewMapping()
	memory.Set("system", system)

	// Swap is optional; hosts without it still get the system cluster.
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		swapInfo := facts.NewMapping()
		swapInfo.Set("total_bytes", int64(swap.Total))
		swapInfo.Set("available_bytes", int64(swap.Free))
		swapInfo.Set("used_bytes", int64(swap.Used))
		memory.Set("swap", swapInfo)
		c.Add("swapsize_mb", int64(swap.Total/1024/1024))
	}

	c.Add("memory", memory)
	c.Add("memorysize_mb", int64(virtual.Total/1024/1024))
	return nil
}
