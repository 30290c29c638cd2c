package recovery

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		options        []Option
		panicSimulator func()
		expectedStatus int
		expectStack    bool
		expectBody     bool
	}{
		{
			name:           "error panic",
			panicSimulator: func() { panic(errors.New("test panic")) },
			expectedStatus: http.StatusInternalServerError,
			expectBody:     true,
		},
		{
			name:           "string panic",
			panicSimulator: func() { panic("something went wrong") },
			expectedStatus: http.StatusInternalServerError,
			expectBody:     true,
		},
		{
			name:           "broken pipe is swallowed",
			panicSimulator: func() { panic(&os.SyscallError{Syscall: "write", Err: errors.New("broken pipe")}) },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "stack trace exposed",
			options:        []Option{WithExposeStackTrace(true), WithLogPrefix("[api]")},
			panicSimulator: func() { panic("boom") },
			expectedStatus: http.StatusInternalServerError,
			expectStack:    true,
			expectBody:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := New(tt.options...).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.panicSimulator()
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if !tt.expectBody {
				if rr.Body.Len() != 0 {
					t.Errorf("expected empty body, got %q", rr.Body.String())
				}
				return
			}

			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json body: %v", err)
			}
			if body["message"] != "internal server error" {
				t.Errorf("unexpected message %v", body["message"])
			}
			if _, hasStack := body["details"]; hasStack != tt.expectStack {
				t.Errorf("expected stack %v, got %v", tt.expectStack, hasStack)
			}
		})
	}
}

func TestMiddleware_NoPanic(t *testing.T) {
	handler := New().Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusAccepted {
		t.Errorf("expected status %d, got %d", http.StatusAccepted, rr.Code)
	}
}

func TestIsBrokenPipeError(t *testing.T) {
	if !isBrokenPipeError(&os.SyscallError{Err: errors.New("connection reset by peer")}) {
		t.Error("expected connection reset to be a broken pipe")
	}
	if isBrokenPipeError(errors.New("broken pipe")) {
		t.Error("plain errors are not syscall errors")
	}
}
