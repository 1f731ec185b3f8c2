// Package logger builds the slog loggers used by the CLI: a coloured text
// handler for terminals and a JSON handler for machine consumption.
package logger
