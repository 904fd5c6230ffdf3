// Package logging assembles structured slog loggers used across the
// alignment pipeline.
//
// It owns the console/JSON handler selection, centralizes level and output
// plumbing, and exposes attribute helpers so pipeline code tags log lines
// with article IDs, run IDs, and component names consistently. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
