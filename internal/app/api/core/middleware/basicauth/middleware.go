// Package basicauth protects handlers with HTTP basic authentication against a bcrypt password hash.
package basicauth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Middleware rejects requests without matching basic auth credentials.
type Middleware struct {
	user         string
	passwordHash []byte
	realm        string
}

// New returns a new basic auth middleware. passwordHash must be a bcrypt hash.
func New(user, passwordHash string) *Middleware {
	return &Middleware{
		user:         user,
		passwordHash: []byte(passwordHash),
		realm:        "wg-agent",
	}
}

// Handler returns the basic auth middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username == "" || password == "" {
			m.unauthorized(w, "missing credentials")
			return
		}

		if subtle.ConstantTimeCompare([]byte(username), []byte(m.user)) != 1 {
			m.unauthorized(w, "invalid credentials")
			return
		}
		if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
			m.unauthorized(w, "invalid credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+m.realm+`", charset="UTF-8"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}
