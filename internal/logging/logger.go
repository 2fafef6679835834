// Package logging defines the structured-logging interface used across
// cmgshare. The default implementation wraps log/slog.
//
// Callers must never pass PINs, peppers, plaintext bundles or export keys as
// attribute values. cryptox.EphemeralKey redacts itself, but nothing else does.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "container exported", "algorithm", alg, "size", n)
type Logger interface {
	// Debug logs fine-grained pipeline progress.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
