package probes

import "github.com/openfacts/openfacts/pkg/facts"

// Groups returns a fresh instance of every built-in resolver group.
func Groups() []facts.Group {
	return []facts.Group{
		&SystemGroup{},
		&MemoryGroup{},
		&ProcessorGroup{},
		&DiskGroup{},
		&NetworkGroup{},
		&LoadGroup{},
	}
}

// Register adds every built-in group to a collection.
func Register(c *facts.Collection) {
	for _, g := range Groups() {
		c.AddGroup(g)
	}
}
