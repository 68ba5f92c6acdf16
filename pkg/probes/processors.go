package probes

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/openfacts/openfacts/pkg/facts"
)

// ProcessorGroup resolves the processor cluster.
type ProcessorGroup struct{}

func (g *ProcessorGroup) Name() string { return "processors" }

func (g *ProcessorGroup) FactNames() []string {
	return []string{"processors", "processorcount"}
}

func (g *ProcessorGroup) Populate(ctx context.Context, c *facts.Collection) error {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return fmt.Errorf("processor probe failed: %w", err)
	}

	processors := facts.NewMapping()
	processors.Set("count", int64(logical))

	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		processors.Set("physicalcount", int64(physical))
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		models := make([]any, len(infos))
		for i, info := range infos {
			models[i] = info.ModelName
		}
		processors.Set("models", models)
		processors.Set("speed_mhz", infos[0].Mhz)
	}

	c.Add("processors", processors)
	c.Add("processorcount", int64(logical))
	return nil
}
