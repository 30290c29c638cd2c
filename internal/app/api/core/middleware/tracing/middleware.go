// Package tracing assigns a request id to every request.
package tracing

import (
	"context"
	"net/http"
)

type contextKey struct{}

// RequestId returns the request id stored in the context, or an empty string.
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithRequestId stores the given request id in the context.
func WithRequestId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware re-uses an upstream request id or generates a new UUID, stores it in the request
// context and echoes it in the response header.
type Middleware struct {
	o options
}

// New returns a new tracing middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{
		o: newOptions(opts...),
	}
}

// Handler returns the tracing middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqId string
		if m.o.upstreamHeader != "" {
			reqId = r.Header.Get(m.o.upstreamHeader)
		}
		if reqId == "" {
			reqId = m.o.generator()
		}

		if m.o.headerIdentifier != "" {
			w.Header().Set(m.o.headerIdentifier, reqId)
		}

		next.ServeHTTP(w, r.WithContext(WithRequestId(r.Context(), reqId)))
	})
}
