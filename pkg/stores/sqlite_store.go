package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Foreign keys are a connection-level setting
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// UpsertGroup inserts or updates a cached fact group. A zero ID gets a
// generated UUID; the expiry is derived from the TTL at write time.
func (s *SQLiteStore) UpsertGroup(ctx context.Context, group *CachedGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	if group.TTL > 0 {
		expires := now.Add(time.Duration(group.TTL) * time.Second)
		group.ExpiresAt = &expires
	}

	query := `
		INSERT INTO cached_groups (
			id, group_name, value, ttl, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(group_name) DO UPDATE SET
			value = excluded.value,
			ttl = excluded.ttl,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	// SQLite-compatible datetime strings keep the expiry comparison in
	// SQL exact.
	var expiresAtStr *string
	if group.ExpiresAt != nil {
		formatted := group.ExpiresAt.UTC().Format("2006-01-02 15:04:05")
		expiresAtStr = &formatted
	}

	_, err := s.db.ExecContext(ctx, query,
		group.ID,
		group.GroupName,
		group.Value,
		group.TTL,
		expiresAtStr,
		group.CreatedAt.Format("2006-01-02 15:04:05"),
		group.UpdatedAt.Format("2006-01-02 15:04:05"),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert cached group: %w", err)
	}

	return nil
}

// GetGroup retrieves a cached group by name. Expired entries are not
// returned.
func (s *SQLiteStore) GetGroup(ctx context.Context, name string) (*CachedGroup, error) {
	query := `
		SELECT id, group_name, value, ttl, expires_at, created_at, updated_at
		FROM cached_groups
		WHERE group_name = ?
		  AND (expires_at IS NULL OR datetime(expires_at) > datetime('now'))
	`

	group := &CachedGroup{}
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&group.ID,
		&group.GroupName,
		&group.Value,
		&group.TTL,
		&group.ExpiresAt,
		&group.CreatedAt,
		&group.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cached group not found or expired: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached group: %w", err)
	}

	return group, nil
}

// ListGroups lists all unexpired cached groups.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*CachedGroup, error) {
	query := `
		SELECT id, group_name, value, ttl, expires_at, created_at, updated_at
		FROM cached_groups
		WHERE expires_at IS NULL OR datetime(expires_at) > datetime('now')
		ORDER BY group_name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached groups: %w", err)
	}
	defer rows.Close()

	groups := []*CachedGroup{}
	for rows.Next() {
		group := &CachedGroup{}
		err := rows.Scan(
			&group.ID,
			&group.GroupName,
			&group.Value,
			&group.TTL,
			&group.ExpiresAt,
			&group.CreatedAt,
			&group.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached group: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached groups: %w", err)
	}

	return groups, nil
}

// DeleteExpired deletes all expired cache entries and reports how many
// rows went away.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM cached_groups WHERE expires_at IS NOT NULL AND datetime(expires_at) <= datetime('now')`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired groups: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// Purge removes every cache entry regardless of expiry.
func (s *SQLiteStore) Purge(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cached_groups`); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}
