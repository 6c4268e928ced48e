// Package logging is the structured logger every authkeeper component takes
// as a dependency. The production implementation sits on log/slog; tests
// pass Nop.
package logging

import "context"

// Logger writes leveled records with key/value attributes:
//
//	log.Info(ctx, "refresh token rotated", "uid", uid)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)

	// Error is reserved for failures the caller could not recover from.
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes, usually "module", to every later record.
	With(args ...any) Logger
}
