package commands

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openfacts/openfacts/pkg/engine"
)

func newWatchCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously resolve facts and serve metrics",
		Long: `Resolve the full fact set, then keep it fresh: fact script and
external fact directories are watched for changes, and the set is
re-resolved on change and on a fixed interval. Resolution metrics are
served on the configured Prometheus endpoint.`,
		Example: `  # Watch with the default 10 minute refresh
  openfacts watch

  # Refresh every minute
  openfacts watch --interval 1m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 10*time.Minute, "periodic refresh interval")

	return cmd
}

func runWatch(ctx context.Context, interval time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tel, err := newTelemetry(cfg, "", true)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.Background())
	ctx = tel.WithContext(ctx)

	if err := tel.StartMetricsServer(); err != nil {
		return err
	}
	log.Info().Str("address", cfg.Telemetry.MetricsAddress).Msg("Serving metrics")

	eng := engine.NewEngine(engine.Options{
		Config:             cfg,
		Telemetry:          tel,
		IncludeStackTraces: verbose,
	})
	if err := eng.Initialize(ctx); err != nil {
		return err
	}
	defer eng.Shutdown()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range append(cfg.Facts.CustomDirs, cfg.Facts.ExternalDirs...) {
		if err := watcher.Add(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Not watching fact directory")
		}
	}

	refresh := func(reason string) {
		start := time.Now()
		eng.Reset(ctx)
		all := eng.All(ctx)
		log.Info().
			Str("reason", reason).
			Int("facts", len(all)).
			Dur("duration", time.Since(start)).
			Msg("Fact set refreshed")
	}

	refresh("startup")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Watch stopped")
			return nil
		case <-ticker.C:
			refresh("interval")
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Debug().Str("file", event.Name).Msg("Fact source changed")
				refresh("change")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watch error")
		}
	}
}
