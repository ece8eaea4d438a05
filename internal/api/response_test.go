package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronforge/chronod/internal/apperrors"
)

func TestWriteError_EchoesRequestIDFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/missing", nil)
	req.Header.Set("x-request-id", "req-123")

	var captured *http.Request
	RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
	})).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, captured)

	rec := httptest.NewRecorder()
	WriteError(rec, captured, apperrors.NewNotFoundResource("job", "missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":"req-123"`)
}

func TestLoggerFor_FallsBackWhenNoRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	logger := LoggerFor(req)
	require.NotNil(t, logger)
}
