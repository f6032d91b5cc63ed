// Package logging provides structured logging utilities for reserve-it.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// Diagnostics always go to stderr. Standard output is reserved for the
// authorization prompt and the per-tick availability lines.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.events.list")
//	logger.Debug("listing events", logging.Calendar(calendarID))
//
// Tokens are never logged directly; use SanitizeToken.
package logging
