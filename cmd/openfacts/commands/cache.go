package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openfacts/openfacts/pkg/stores"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the persistent fact cache",
	}

	cmd.AddCommand(newCacheListCommand())
	cmd.AddCommand(newCachePurgeCommand())

	return cmd
}

// openStore opens the configured cache database directly, without an
// engine.
func openStore(ctx context.Context) (*stores.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := stores.NewSQLiteStore(stores.Config{Path: cfg.Cache.Path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func newCacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached fact groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			groups, err := store.ListGroups(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GROUP\tTTL\tEXPIRES\tUPDATED")
			for _, group := range groups {
				expires := "never"
				if group.ExpiresAt != nil {
					expires = group.ExpiresAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%s\t%ds\t%s\t%s\n",
					group.GroupName,
					group.TTL,
					expires,
					group.UpdatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			return w.Flush()
		},
	}
}

func newCachePurgeCommand() *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached fact groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if expiredOnly {
				deleted, err := store.DeleteExpired(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d expired entries\n", deleted)
				return nil
			}

			if err := store.Purge(ctx); err != nil {
				return err
			}
			fmt.Println("Cache purged")
			return nil
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "delete only expired entries")

	return cmd
}
