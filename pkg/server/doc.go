// Package server ties the decision engine, ruleset loader, audit store and
// metrics together behind an HTTP API and manages the server lifecycle:
// route setup, the middleware chain (request IDs, logging, recovery), and
// graceful shutdown on signal or context cancellation.
//
// Basic usage:
//
//	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, server.Dependencies{
//	    Engine: eng,
//	    Loader: mgr,
//	    Parser: parser.NewParser(),
//	}, logger)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// See package handlers for the route list and error envelope.
package server
