package stores_test

import (
	"context"
	"fmt"
	"log"

	"github.com/openfacts/openfacts/pkg/stores"
)

// ExampleNewSQLiteStore demonstrates creating and initializing a fact cache.
func ExampleNewSQLiteStore() {
	store, err := stores.NewSQLiteStore(stores.Config{
		Path: ":memory:", // Use in-memory database for example
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}

	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	fmt.Println("Cache initialized successfully")
	// Output: Cache initialized successfully
}

// ExampleSQLiteStore_UpsertGroup demonstrates caching a resolved fact group.
func ExampleSQLiteStore_UpsertGroup() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	group := &stores.CachedGroup{
		GroupName: "memory",
		Value:     `{"memorysize_mb":16384}`,
		TTL:       3600,
	}

	if err := store.UpsertGroup(ctx, group); err != nil {
		log.Fatal(err)
	}

	retrieved, err := store.GetGroup(ctx, "memory")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Group: %s, TTL: %d\n", retrieved.GroupName, retrieved.TTL)
	// Output: Group: memory, TTL: 3600
}
