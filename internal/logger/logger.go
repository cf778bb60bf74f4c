// Package logger provides the process-wide structured logger and a
// request-scoped variant carried through a context.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const service = "mindcare"

var level = new(slog.LevelVar)

// L is the process logger. Every line carries the service name.
var L = newLogger(os.Stdout)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})).With("service", service)
}

// SetLevel applies a log_level value (debug, info, warn, error). An unknown
// value leaves the level at info and is reported.
func SetLevel(lvl string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(lvl))); err != nil {
		level.Set(slog.LevelInfo)
		return fmt.Errorf("unknown log level %q", lvl)
	}
	level.Set(l)
	return nil
}

// SetOutput redirects the process logger, keeping the configured level.
// The terminal client points it at a file so JSON lines don't tear the UI.
func SetOutput(w io.Writer) {
	L = newLogger(w)
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithContext, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return L
}
