// Package logging configures the application's structured logging on top of
// log/slog.
//
// Two output formats are supported: a console handler that renders
// "TIMESTAMP LEVEL component: message key=value" lines (with colorized level
// labels when writing to a terminal) and a standard JSON handler. Components
// attach a "component" attribute via NewComponentLogger so log lines can be
// traced back to the pipeline stage or adapter that emitted them.
package logging
