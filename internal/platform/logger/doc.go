// Package logger configures the process-wide slog JSON handler and carries
// request-scoped loggers (with trace IDs) through context.
package logger
