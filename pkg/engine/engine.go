package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/openfacts/openfacts/pkg/config"
	"github.com/openfacts/openfacts/pkg/facts"
	"github.com/openfacts/openfacts/pkg/probes"
	"github.com/openfacts/openfacts/pkg/script"
	"github.com/openfacts/openfacts/pkg/stores"
	"github.com/openfacts/openfacts/pkg/telemetry"
)

// Options configure an Engine.
type Options struct {
	// Config is the loaded configuration; nil means defaults.
	Config *config.Config

	// Telemetry is the observability stack; nil disables metrics and
	// tracing hooks.
	Telemetry *telemetry.Telemetry

	// IncludeStackTraces adds Starlark backtraces to script error logs.
	IncludeStackTraces bool

	// Groups overrides the native probe groups; nil means the standard
	// set. Tests inject fakes here.
	Groups []facts.Group
}

// Engine is the top-level fact resolution facade.
type Engine struct {
	cfg        *config.Config
	tel        *telemetry.Telemetry
	collection *facts.Collection
	runtime    *script.Runtime
	store      stores.Store

	groups      []facts.Group
	stackTraces bool
	initialized bool
}

// NewEngine creates an engine from options. Initialize must run before
// any query.
func NewEngine(opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	groups := opts.Groups
	if groups == nil {
		groups = probes.Groups()
	}
	return &Engine{
		cfg:         cfg,
		tel:         opts.Telemetry,
		collection:  facts.NewCollection(),
		groups:      groups,
		stackTraces: opts.IncludeStackTraces,
	}
}

// Collection exposes the underlying fact collection.
func (e *Engine) Collection() *facts.Collection {
	return e.collection
}

// Initialize opens the cache, registers probe groups, and starts the
// scripting runtime. It is called once; Shutdown pairs with it.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.initialized {
		return fmt.Errorf("engine already initialized")
	}

	if e.cfg.Cache.Enabled {
		store, err := stores.NewSQLiteStore(stores.Config{Path: e.cfg.Cache.Path})
		if err != nil {
			return fmt.Errorf("failed to create fact cache: %w", err)
		}
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("failed to open fact cache: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to migrate fact cache: %w", err)
		}
		e.store = store
	}

	blocked := make(map[string]bool, len(e.cfg.Facts.Blocklist))
	for _, name := range e.cfg.Facts.Blocklist {
		blocked[name] = true
	}

	for _, group := range e.groups {
		if blocked[group.Name()] {
			log.Debug().Str("group", group.Name()).Msg("Fact group blocklisted")
			continue
		}
		e.collection.AddGroup(e.wrapGroup(group))
	}

	if e.tel != nil {
		e.collection.SetObserver(e.tel.Metrics)
	}

	if !e.cfg.Facts.NoCustomFacts {
		e.runtime = script.NewRuntime(
			script.WithFramework(script.NewFroyoFramework(e.cfg.Framework.Root)),
		)
		e.runtime.Initialize(e.stackTraces)
		for _, dir := range e.cfg.Facts.ExternalDirs {
			e.runtime.AddExternalDir(dir)
		}
	}

	e.initialized = true
	return nil
}

// wrapGroup decorates a probe group with the persistent cache when one
// is configured for it.
func (e *Engine) wrapGroup(group facts.Group) facts.Group {
	if e.store == nil {
		return group
	}
	ttl, ok := e.cfg.Cache.GroupTTLs[group.Name()]
	if !ok {
		return group
	}
	return newCachingGroup(group, e.store, ttl.Std(), e.tel)
}

// LoadCustomFacts runs the custom fact cycle: framework bootstrap,
// script discovery, external fact files, and resolution.
func (e *Engine) LoadCustomFacts(ctx context.Context) {
	if e.runtime == nil {
		return
	}
	e.runtime.LoadCustomFacts(ctx, e.collection, true, true, e.cfg.Facts.CustomDirs)
}

// Query resolves a dotted fact query against the collection.
func (e *Engine) Query(ctx context.Context, query string) (*facts.Value, bool) {
	v, found := e.collection.Query(ctx, query)
	if e.tel != nil {
		e.tel.Metrics.RecordQuery(found)
	}
	return v, found
}

// All resolves every fact group and returns the complete fact set as
// plain data keyed by fact name.
func (e *Engine) All(ctx context.Context) map[string]any {
	e.collection.ResolveAll(ctx)
	if e.tel != nil {
		e.tel.Metrics.SetFactsCollected(float64(e.collection.Size()))
	}
	return e.collection.Export()
}

// Reset clears resolved facts so the next query recomputes from
// scratch. The persistent cache is untouched; use PurgeCache for that.
func (e *Engine) Reset(ctx context.Context) {
	e.collection.Reset()
	e.LoadCustomFacts(ctx)
}

// PurgeCache empties the persistent fact cache.
func (e *Engine) PurgeCache(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Purge(ctx)
}

// Shutdown releases the runtime and the cache. It pairs with Initialize.
func (e *Engine) Shutdown() error {
	if e.runtime != nil && e.runtime.Initialized() {
		e.runtime.Uninitialize()
		e.runtime = nil
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			return fmt.Errorf("failed to close fact cache: %w", err)
		}
		e.store = nil
	}
	e.initialized = false
	return nil
}
