// Package logiface adapts a logiface logger to the core.Logger
// interface, so pools can log through any logiface backend (zerolog,
// slog, stumpy, ...) without the core depending on one.
package logiface

import (
	"github.com/Swind/go-task-pool/core"
	"github.com/joeycumines/logiface"
)

// Logger forwards core.Logger calls to a logiface.Logger.
type Logger[E logiface.Event] struct {
	l *logiface.Logger[E]
}

var _ core.Logger = (*Logger[logiface.Event])(nil)

// New wraps a logiface logger. A nil logger yields a no-op adapter
// (logiface builders are nil-safe).
func New[E logiface.Event](l *logiface.Logger[E]) *Logger[E] {
	return &Logger[E]{l: l}
}

// Debug logs a debug message.
func (x *Logger[E]) Debug(msg string, fields ...core.Field) {
	emit(x.l.Debug(), msg, fields)
}

// Info logs an info message.
func (x *Logger[E]) Info(msg string, fields ...core.Field) {
	emit(x.l.Info(), msg, fields)
}

// Warn logs a warning message.
func (x *Logger[E]) Warn(msg string, fields ...core.Field) {
	emit(x.l.Warning(), msg, fields)
}

// Error logs an error message.
func (x *Logger[E]) Error(msg string, fields ...core.Field) {
	emit(x.l.Err(), msg, fields)
}

func emit[E logiface.Event](b *logiface.Builder[E], msg string, fields []core.Field) {
	for _, f := range fields {
		b = b.Field(f.Key, f.Value)
	}
	b.Log(msg)
}
