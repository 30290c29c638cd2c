// Package logging logs every HTTP request with slog.
package logging

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Middleware logs method, path, status, size and duration of each request.
type Middleware struct {
	o options
}

// New returns a new logging middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{
		o: newOptions(opts...),
	}
}

// Handler returns the logging middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newWriterWrapper(w)
		start := time.Now()
		defer func() {
			m.log(r, ww, time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}

func (m *Middleware) log(r *http.Request, ww *writerWrapper, duration time.Duration) {
	args := []any{
		"protocol", r.Proto,
		"status", ww.StatusCode,
		"dataLength", ww.WrittenBytes,
		"duration", duration.String(),
		"clientIP", clientIp(r),
		"userAgent", r.UserAgent(),
	}
	if m.o.requestId != nil {
		if id := m.o.requestId(r.Context()); id != "" {
			args = append(args, "requestId", id)
		}
	}

	msg := r.Method + " " + r.URL.Path
	if m.o.prefix != "" {
		msg = m.o.prefix + " " + msg
	}

	slog.Log(context.Background(), m.o.level, msg, args...)
}

func clientIp(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	// strip the port
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
