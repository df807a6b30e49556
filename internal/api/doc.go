// Package api implements the read-only HTTP status API of the gateway.
//
// This package provides:
//   - Channel listing and lookup from the published registry view
//   - Per-channel reading history from the SQLite history store
//   - Health of the controller, broker and database connections
//   - Gateway counters as JSON and in the Prometheus exposition format
//   - Middleware stack (request ID, logging, recovery)
//
// # Architecture
//
// The gateway loop owns the registry and never blocks on HTTP. Handlers
// only read the copy the loop publishes after each change, so a slow
// client cannot stall telegram handling.
//
// # Graceful Degradation
//
// History and Prometheus routes answer 503 when their backends are not
// configured; everything else keeps working.
package api
