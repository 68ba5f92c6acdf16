package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openfacts/openfacts/pkg/config"
	"github.com/openfacts/openfacts/pkg/engine"
	"github.com/openfacts/openfacts/pkg/output"
	"github.com/openfacts/openfacts/pkg/telemetry"
)

var (
	// Global flags
	configPath    string
	verbose       bool
	jsonOutput    bool
	yamlOutput    bool
	customDirs    []string
	externalDirs  []string
	frameworkRoot string
	noCustomFacts bool
	noCache       bool
	timing        bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "openfacts [query...]",
		Short: "openfacts - Host fact inventory",
		Long: `openfacts collects and reports structured facts about the local host.

Facts resolve lazily from probe groups (kernel, memory, processors,
disks, networking, load) and from custom fact scripts written in
Starlark. Dotted queries navigate into structured facts:

  openfacts os.release.major
  openfacts networking.interfaces.eth0.mac
  openfacts mountpoints."/var/lib"

Without arguments every fact is resolved and listed.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/openfacts/openfacts.cue", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringSliceVar(&customDirs, "custom-dir", nil, "extra custom fact script directories")
	rootCmd.PersistentFlags().StringSliceVar(&externalDirs, "external-dir", nil, "extra external fact directories")
	rootCmd.PersistentFlags().StringVar(&frameworkRoot, "framework", "", "framework installation root")
	rootCmd.PersistentFlags().BoolVar(&noCustomFacts, "no-custom-facts", false, "disable the scripting runtime")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the persistent fact cache")

	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.Flags().BoolVar(&yamlOutput, "yaml", false, "output in YAML format")
	rootCmd.Flags().BoolVar(&timing, "timing", false, "emit resolution timing traces")

	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newCacheCommand())

	return rootCmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, err
	}
	cfg, err := loader.Load(configPath)
	if err != nil {
		return nil, err
	}

	cfg.Facts.CustomDirs = append(cfg.Facts.CustomDirs, customDirs...)
	cfg.Facts.ExternalDirs = append(cfg.Facts.ExternalDirs, externalDirs...)
	if frameworkRoot != "" {
		cfg.Framework.Root = frameworkRoot
	}
	if noCustomFacts {
		cfg.Facts.NoCustomFacts = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if verbose {
		cfg.Telemetry.LogLevel = "debug"
	}
	return cfg, nil
}

// newTelemetry builds the observability stack from config and flags.
func newTelemetry(cfg *config.Config, version string, metricsEnabled bool) (*telemetry.Telemetry, error) {
	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	tcfg.Logging.Level = cfg.Telemetry.LogLevel
	tcfg.Logging.Format = cfg.Telemetry.LogFormat
	tcfg.Tracing.Enabled = cfg.Telemetry.TracingEnabled || timing
	tcfg.Metrics.Enabled = metricsEnabled
	tcfg.Metrics.ListenAddress = cfg.Telemetry.MetricsAddress
	return telemetry.NewTelemetry(tcfg)
}

func runQuery(ctx context.Context, queries []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	tel, err := newTelemetry(cfg, "", false)
	if err != nil {
		return err
	}
	defer tel.Shutdown(ctx)
	ctx = tel.WithContext(ctx)

	format := output.FormatPlain
	switch {
	case jsonOutput:
		format = output.FormatJSON
	case yamlOutput:
		format = output.FormatYAML
	}

	eng := engine.NewEngine(engine.Options{
		Config:             cfg,
		Telemetry:          tel,
		IncludeStackTraces: verbose,
	})
	if err := eng.Initialize(ctx); err != nil {
		return err
	}
	defer eng.Shutdown()

	ic := telemetry.StartOperation(ctx, "facts.resolve")
	eng.LoadCustomFacts(ctx)

	var rendered string
	if len(queries) == 0 {
		rendered, err = output.RenderFacts(eng.All(ctx), format)
	} else {
		rendered, err = renderQueries(ctx, eng, queries, format)
	}
	ic.End(err)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(os.Stdout, rendered)
	return err
}

// renderQueries renders one value per query. A single query prints the
// bare value; several print a name-to-value mapping, missing facts
// rendering empty.
func renderQueries(ctx context.Context, eng *engine.Engine, queries []string, format output.Format) (string, error) {
	if len(queries) == 1 {
		var data any
		if v, found := eng.Query(ctx, queries[0]); found {
			data = v.Export()
		}
		return output.RenderValue(data, format)
	}

	results := make(map[string]any, len(queries))
	for _, query := range queries {
		if v, found := eng.Query(ctx, query); found {
			results[query] = v.Export()
		} else {
			results[query] = nil
		}
	}
	return output.RenderFacts(results, format)
}
