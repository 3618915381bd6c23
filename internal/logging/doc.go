// Package logging builds slog loggers with console and JSON handlers plus
// standardized attribute helpers shared across the pipeline.
package logging
