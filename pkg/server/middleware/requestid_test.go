package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Error("Request ID should not be empty")
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RequestIDMiddleware(handler)

	t.Run("generates request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		requestID := w.Header().Get(RequestIDHeader)
		if requestID == "" {
			t.Fatal("Request ID should be set in response header")
		}
		if _, err := uuid.Parse(requestID); err != nil {
			t.Errorf("Request ID %q is not a UUID: %v", requestID, err)
		}
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		customID := "custom-request-id-12345"
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, customID)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != customID {
			t.Errorf("Request ID = %v, want %v", got, customID)
		}
	})

	t.Run("generates unique IDs for different requests", func(t *testing.T) {
		w1 := httptest.NewRecorder()
		wrapped.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))

		w2 := httptest.NewRecorder()
		wrapped.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))

		id1 := w1.Header().Get(RequestIDHeader)
		id2 := w2.Header().Get(RequestIDHeader)

		if id1 == id2 {
			t.Errorf("Request IDs should be unique, got %s for both", id1)
		}
	})
}

func TestGetRequestID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty string", got)
	}
}
