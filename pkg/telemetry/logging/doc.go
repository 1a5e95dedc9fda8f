// Package logging constructs the process-wide structured logger.
//
// The package wraps Go's standard log/slog package: it parses the
// configured level and format and returns a *slog.Logger writing JSON or
// text. Components derive scoped loggers from it:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	engineLog := logger.With("component", "engine")
package logging
