package basicauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	handler := New("admin", string(hash)).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name           string
		user, password string
		setAuth        bool
		expectedStatus int
	}{
		{name: "no credentials", expectedStatus: http.StatusUnauthorized},
		{name: "wrong user", setAuth: true, user: "root", password: "secret", expectedStatus: http.StatusUnauthorized},
		{name: "wrong password", setAuth: true, user: "admin", password: "nope", expectedStatus: http.StatusUnauthorized},
		{name: "empty password", setAuth: true, user: "admin", expectedStatus: http.StatusUnauthorized},
		{name: "valid", setAuth: true, user: "admin", password: "secret", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Code == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}
