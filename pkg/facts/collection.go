package facts

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
)

// Group owns a cluster of related facts. The first request for any fact in
// the cluster triggers a single Populate pass that adds every fact the
// group can supply; the collection serves all later requests from memory.
type Group interface {
	// Name identifies the group in logs, metrics, and cache storage.
	Name() string

	// FactNames lists the fact names the group can supply.
	FactNames() []string

	// Populate runs the group's collection pass, adding facts to c. It is
	// called at most once per collection lifetime (until a Reset).
	Populate(ctx context.Context, c *Collection) error
}

// Observer receives resolution events from a collection. Implementations
// hook metrics without coupling the engine to a metrics backend.
type Observer interface {
	GroupResolved(group string, err error)
}

// Collection is the shared fact store: a name-to-value map fed by resolver
// groups and by custom and external facts. It is not safe for concurrent
// use; the engine accesses it from a single logical flow.
type Collection struct {
	facts    map[string]*Value
	groups   map[string]Group
	byFact   map[string]string
	resolved map[string]bool
	observer Observer
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		facts:    make(map[string]*Value),
		groups:   make(map[string]Group),
		byFact:   make(map[string]string),
		resolved: make(map[string]bool),
	}
}

// SetObserver installs an observer for group resolution events.
func (c *Collection) SetObserver(obs Observer) {
	c.observer = obs
}

// AddGroup registers a resolver group. Fact names already claimed by an
// earlier group are left with their original owner.
func (c *Collection) AddGroup(g Group) {
	c.groups[g.Name()] = g
	for _, name := range g.FactNames() {
		if _, ok := c.byFact[name]; !ok {
			c.byFact[name] = g.Name()
		}
	}
}

// Add stores raw data as a fact value, replacing any previous value for the
// name.
func (c *Collection) Add(name string, data any) {
	c.facts[name] = NewValue(data)
}

// AddValue stores an already-wrapped fact value.
func (c *Collection) AddValue(name string, v *Value) {
	c.facts[name] = v
}

// Resolve returns the value for a fact name, running the owning group's
// collection pass if it has not run yet. A name no group can supply, or one
// the group's pass produced no value for, yields nil. Misses are not
// negatively cached; a Reset allows recomputation.
func (c *Collection) Resolve(ctx context.Context, name string) *Value {
	if v, ok := c.facts[name]; ok {
		return v
	}
	groupName, ok := c.byFact[name]
	if !ok {
		return nil
	}
	if !c.resolved[groupName] {
		c.populate(ctx, groupName)
	}
	return c.facts[name]
}

func (c *Collection) populate(ctx context.Context, groupName string) {
	group := c.groups[groupName]
	c.resolved[groupName] = true

	log.Debug().Str("group", groupName).Msg("Resolving fact group")
	err := group.Populate(ctx, c)
	if err != nil {
		log.Warn().Err(err).Str("group", groupName).Msg("Fact group resolution failed")
	}
	if c.observer != nil {
		c.observer.GroupResolved(groupName, err)
	}
}

// ResolveAll runs every registered group that has not run yet, so the
// collection holds the complete fact set.
func (c *Collection) ResolveAll(ctx context.Context) {
	names := make([]string, 0, len(c.groups))
	for name := range c.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !c.resolved[name] {
			c.populate(ctx, name)
		}
	}
}

// Query resolves a dotted query string: the first segment names a fact, the
// remaining segments navigate into its value via Lookup. A quoted segment
// may contain literal dots.
func (c *Collection) Query(ctx context.Context, query string) (*Value, bool) {
	segments := SplitPath(query)
	if len(segments) == 0 || segments[0] == "" {
		return nil, false
	}
	root := c.Resolve(ctx, segments[0])
	if root == nil {
		return nil, false
	}
	if len(segments) == 1 {
		return root, true
	}
	return Lookup(root, segments[1:])
}

// Names returns the names of all currently resolved facts, sorted.
func (c *Collection) Names() []string {
	names := make([]string, 0, len(c.facts))
	for name := range c.facts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of resolved facts.
func (c *Collection) Size() int {
	return len(c.facts)
}

// Export returns all resolved facts as plain Go data keyed by fact name.
func (c *Collection) Export() map[string]any {
	out := make(map[string]any, len(c.facts))
	for name, v := range c.facts {
		out[name] = v.Export()
	}
	return out
}

// Reset clears all resolved facts and group state so the next request
// recomputes from scratch. Registered groups stay registered.
func (c *Collection) Reset() {
	c.facts = make(map[string]*Value)
	c.resolved = make(map[string]bool)
}
