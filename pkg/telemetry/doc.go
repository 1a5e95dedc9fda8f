// Package telemetry provides observability for Themis.
//
// # Components
//
//   - logging: structured logging via log/slog
//   - metrics: Prometheus metrics collection
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordEvaluation(metrics.ResultMatch, elapsed)
package telemetry
