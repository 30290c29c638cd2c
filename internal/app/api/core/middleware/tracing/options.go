package tracing

import "github.com/google/uuid"

type options struct {
	upstreamHeader   string
	headerIdentifier string
	generator        func() string
}

// Option sets an option of the tracing middleware.
type Option func(*options)

// WithHeaderIdentifier sets the response header that carries the request id.
// An empty value disables the header. Default: X-Request-ID.
func WithHeaderIdentifier(identifier string) Option {
	return func(o *options) {
		o.headerIdentifier = identifier
	}
}

// WithUpstreamHeader sets the request header an upstream proxy uses to pass its request id.
// If the header is missing, a new id is generated.
func WithUpstreamHeader(header string) Option {
	return func(o *options) {
		o.upstreamHeader = header
	}
}

// WithIdGenerator replaces the UUID generator.
func WithIdGenerator(fn func() string) Option {
	return func(o *options) {
		o.generator = fn
	}
}

func newOptions(opts ...Option) options {
	o := options{
		headerIdentifier: "X-Request-ID",
		generator:        uuid.NewString,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
