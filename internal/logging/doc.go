// Package logging builds the slog loggers used by framemedian.
//
// It owns the console and JSON handlers and the level parsing, and provides
// a no-op logger for library code and tests that are not given one.
package logging
