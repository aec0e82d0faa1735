// Package logging provides structured logging for Rallypoint Core.
//
// It wraps log/slog with service defaults: JSON or text output, level
// filtering, and service/version fields on every record. Component loggers
// are derived with With:
//
//	apiLog := logger.With("component", "api")
//	apiLog.Info("listening", "addr", addr)
//
// All methods are safe for concurrent use from multiple goroutines.
package logging
