// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// Middleware functions are chained outermost to innermost:
//
//	handler = RequestID(Logging(Recovery(mux)))
//
//   - RequestIDMiddleware: assign a UUID per request (or keep a client-sent
//     X-Request-ID), add it to the context and response headers
//   - LoggingMiddleware: structured request/response log with method, path,
//     status, latency and request ID
//   - RecoveryMiddleware: recover from handler panics, log the stack trace,
//     return a JSON 500 response
//
// RequestID runs first so the logging and recovery layers inside it see the
// ID; recovery sits innermost so a recovered panic is still logged as a 500
// by the request log.
//
// All middleware functions are safe for concurrent use.
package middleware
