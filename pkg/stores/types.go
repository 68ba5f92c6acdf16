package stores

import (
	"context"
	"time"
)

// CachedGroup is one persisted fact group: the serialized facts it
// produced on its last resolution pass, plus expiry bookkeeping.
type CachedGroup struct {
	ID        string     `json:"id"`
	GroupName string     `json:"group_name"`
	Value     string     `json:"value"` // JSON blob of the group's facts
	TTL       int        `json:"ttl"`   // seconds, 0 = no expiry
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Store defines the interface for the fact cache persistence layer.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Cached group operations
	UpsertGroup(ctx context.Context, group *CachedGroup) error
	GetGroup(ctx context.Context, name string) (*CachedGroup, error)
	ListGroups(ctx context.Context) ([]*CachedGroup, error)
	DeleteExpired(ctx context.Context) (int64, error)
	Purge(ctx context.Context) error

	// Utility
	HealthCheck(ctx context.Context) error
}
