package probes

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/load"

	"github.com/openfacts/openfacts/pkg/facts"
)

// LoadGroup resolves the load-average cluster.
type LoadGroup struct{}

func (g *LoadGroup) Name() string { return "load" }

func (g *LoadGroup) FactNames() []string {
	return []string{"load_averages"}
}

func (g *LoadGroup) Populate(ctx context.Context, c *facts.Collection) error {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return fmt.Errorf("load probe failed: %w", err)
	}

	averages := facts.NewMapping()
	averages.Set("1m", avg.Load1)
	averages.Set("5m", avg.Load5)
	averages.Set("15m", avg.Load15)
	c.Add("load_averages", averages)
	return nil
}
