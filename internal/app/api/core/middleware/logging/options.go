package logging

import (
	"context"
	"log/slog"
)

type options struct {
	level     slog.Level
	prefix    string
	requestId func(ctx context.Context) string
}

// Option sets an option of the logging middleware.
type Option func(*options)

// WithLevel sets the level of the request log messages. Default: info.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithPrefix prepends the given prefix (and a space) to every log message.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRequestId sets the function that extracts the request id from the request context.
func WithRequestId(fn func(ctx context.Context) string) Option {
	return func(o *options) {
		o.requestId = fn
	}
}

func newOptions(opts ...Option) options {
	o := options{
		level: slog.LevelInfo,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
