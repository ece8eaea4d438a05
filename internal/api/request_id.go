package api

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDMiddleware ensures every request has a request ID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("x-request-id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("x-request-id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID for the current request.
func GetRequestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if value := r.Context().Value(requestIDKey); value != nil {
		if requestID, ok := value.(string); ok {
			return requestID
		}
	}
	return ""
}

// LoggerFor returns a logger prefixed with r's request ID, so every line
// an admin-API handler logs about a request — a panic, a 5xx error — can
// be correlated back to the x-request-id the client (or chronoctl) saw
// in the response.
func LoggerFor(r *http.Request) *log.Logger {
	id := GetRequestID(r)
	if id == "" {
		id = "unknown"
	}
	return log.New(log.Writer(), "[req "+id+"] ", log.LstdFlags)
}
