// Package api implements the HTTP REST API and WebSocket server for
// Rallypoint Core.
//
// This package provides:
//   - REST endpoints for signup, login, identity traversal, and
//     group/schedule/event coordination
//   - WebSocket hub for real-time device location broadcasts
//   - Bearer-token identity middleware built on the lazy per-request
//     authorization context
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Identity
//
// The middleware never verifies tokens eagerly. Each request gets a
// fresh authorization context carrying a pending resolver for the
// bearer token; the token is checked against the store the first time
// a handler asks who the caller is. Handlers on public routes simply
// never ask.
//
// # Graceful Degradation
//
// The server operates without MQTT and InfluxDB. Location updates over
// HTTP still work; only the MQTT ingest path and the history trail are
// absent.
package api
