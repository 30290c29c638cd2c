// Package recovery turns panics of the wrapped handlers into JSON error responses.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
)

// Middleware recovers from panics and answers with an Internal Server Error. It must be the first
// middleware in the chain so that it also covers panics of other middlewares.
type Middleware struct {
	o options
}

// New returns a new recovery middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{
		o: newOptions(opts...),
	}
}

// Handler returns the recovery middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec) // let net/http abort the connection
			}

			stack := debug.Stack()
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}

			// a client that went away is no reason for a stack trace
			if isBrokenPipeError(err) {
				slog.Debug(m.prefixed("client connection lost"), "path", r.URL.Path, "error", err)
				return
			}

			slog.Error(m.prefixed("recovered from panic"),
				"method", r.Method, "path", r.URL.Path, "error", err, "stack", string(stack))
			m.writeError(w, stack)
		}()

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) prefixed(message string) string {
	if m.o.logPrefix != "" {
		return m.o.logPrefix + " " + message
	}
	return message
}

func (m *Middleware) writeError(w http.ResponseWriter, stack []byte) {
	body := map[string]any{
		"code":    http.StatusInternalServerError,
		"message": "internal server error",
	}
	if m.o.exposeStackTrace {
		body["details"] = string(stack)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(body)
}

func isBrokenPipeError(err error) bool {
	var syscallErr *os.SyscallError
	if !errors.As(err, &syscallErr) {
		return false
	}

	msg := strings.ToLower(syscallErr.Err.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
