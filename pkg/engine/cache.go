package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openfacts/openfacts/pkg/facts"
	"github.com/openfacts/openfacts/pkg/stores"
	"github.com/openfacts/openfacts/pkg/telemetry"
)

// cachingGroup decorates a fact group with the persistent cache. A hit
// rehydrates the group's facts from JSON without running its probes; a
// miss runs the probes and writes the result back with the group's TTL.
type cachingGroup struct {
	inner facts.Group
	store stores.Store
	ttl   time.Duration
	tel   *telemetry.Telemetry
}

func newCachingGroup(inner facts.Group, store stores.Store, ttl time.Duration, tel *telemetry.Telemetry) *cachingGroup {
	return &cachingGroup{inner: inner, store: store, ttl: ttl, tel: tel}
}

func (g *cachingGroup) Name() string { return g.inner.Name() }

func (g *cachingGroup) FactNames() []string { return g.inner.FactNames() }

func (g *cachingGroup) Populate(ctx context.Context, c *facts.Collection) error {
	if cached, err := g.store.GetGroup(ctx, g.inner.Name()); err == nil {
		var data map[string]any
		if err := json.Unmarshal([]byte(cached.Value), &data); err == nil {
			for name, value := range data {
				c.Add(name, facts.Normalize(value))
			}
			if g.tel != nil {
				g.tel.Metrics.RecordCacheHit(g.inner.Name())
			}
			log.Debug().Str("group", g.inner.Name()).Msg("Fact group served from cache")
			return nil
		}
		// Unreadable entries fall through to a fresh probe pass.
		log.Warn().Err(err).Str("group", g.inner.Name()).Msg("Discarding corrupt cache entry")
	}

	if g.tel != nil {
		g.tel.Metrics.RecordCacheMiss(g.inner.Name())
	}

	// The probe pass runs against a scratch collection so only this
	// group's facts end up serialized.
	scratch := facts.NewCollection()
	if err := g.inner.Populate(ctx, scratch); err != nil {
		return err
	}

	exported := scratch.Export()
	for name, value := range exported {
		c.Add(name, facts.Normalize(value))
	}

	payload, err := json.Marshal(exported)
	if err != nil {
		log.Warn().Err(err).Str("group", g.inner.Name()).Msg("Fact group not cacheable")
		return nil
	}
	entry := &stores.CachedGroup{
		GroupName: g.inner.Name(),
		Value:     string(payload),
		TTL:       int(g.ttl.Seconds()),
	}
	if err := g.store.UpsertGroup(ctx, entry); err != nil {
		log.Warn().Err(err).Str("group", g.inner.Name()).Msg("Failed to write fact cache")
	}
	return nil
}
