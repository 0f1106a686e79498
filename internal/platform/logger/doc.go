// Package logger sets up the process-wide JSON slog logger and carries
// request-scoped loggers, enriched with trace and learner IDs, through
// context.Context.
package logger
