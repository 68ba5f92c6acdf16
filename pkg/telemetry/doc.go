// Package telemetry provides observability instrumentation for openfacts.
//
// Three pillars back it: structured logging (zerolog), tracing
// (OpenTelemetry with a stdout exporter for timing runs), and Prometheus
// metrics exposed by the watch command.
//
// Initialize at startup and shut down once at process end:
//
//	tel, err := telemetry.NewTelemetry(telemetry.DefaultConfig())
//	if err != nil {
//	    log.Fatal().Err(err).Msg("telemetry init failed")
//	}
//	defer tel.Shutdown(context.Background())
//
// Component loggers carry fact-engine fields:
//
//	logger := tel.Logger.NewComponentLogger("engine").WithGroup("memory")
//	logger.Debug("Resolving fact group")
//
// Metrics record resolution activity:
//
//	tel.Metrics.RecordGroupResolution("memory", "succeeded", duration)
//	tel.Metrics.RecordQuery(true)
//
// The Metrics type satisfies the collection's resolution observer, so a
// wired collection reports every group pass automatically.
package telemetry
