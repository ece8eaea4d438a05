package api

import (
	"net/http"

	"github.com/cronforge/chronod/internal/apperrors"
)

// Handler adapts handlers that return errors into http.Handler.
type Handler func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP implements http.Handler.
func (handler Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := handler(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// RecovererMiddleware converts panics into 500 responses. The panic
// detail is logged through the request's own logger (request_id.go) so
// it carries the same x-request-id the 500 response returns, letting an
// operator grep one value across both the panic line and the response
// chronoctl or a client saw.
func RecovererMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				LoggerFor(r).Printf("panic recovered in %s %s: %v", r.Method, r.URL.Path, recovered)
				WriteError(w, r, apperrors.NewInternalError("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
