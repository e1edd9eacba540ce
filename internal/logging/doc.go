// Package logging wires log/slog with the handlers and typed attribute
// helpers the rest of the pipeline uses. Console output gets a compact
// human-oriented format (colored when stdout is a terminal), JSON output is
// meant for log shipping. Component loggers and context-derived fields keep
// resolution and provider identifiers attached to every record.
package logging
