package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/school-auth/internal/service"
)

func TestToHTTP_Mapping(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("service.auth.Op: %w", err) }

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal"},
		{"unknown", stderrors.New("db exploded"), http.StatusInternalServerError, "internal"},
		{"missing token", wrap(service.ErrMissingToken), http.StatusUnauthorized, "missing_token"},
		{"malformed", wrap(service.ErrInvalidToken), http.StatusUnauthorized, "invalid_token"},
		{"expired", wrap(service.ErrTokenExpired), http.StatusUnauthorized, "token_expired"},
		{"revoked", wrap(service.ErrTokenRevoked), http.StatusUnauthorized, "token_revoked"},
		{"forbidden", wrap(service.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"credentials", wrap(service.ErrInvalidCredentials), http.StatusUnauthorized, "invalid_credentials"},
		{"role", wrap(service.ErrInvalidRole), http.StatusBadRequest, "invalid_argument"},
		{"username", wrap(service.ErrInvalidUsername), http.StatusBadRequest, "invalid_argument"},
		{"weak password", wrap(service.ErrWeakPassword), http.StatusBadRequest, "invalid_argument"},
		{"transport", ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"taken", wrap(service.ErrUsernameTaken), http.StatusConflict, "already_exists"},
		{"not found", wrap(service.ErrUserNotFound), http.StatusNotFound, "not_found"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, resp := ToHTTP(tt.err)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.code, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_InternalDoesNotLeakDetails(t *testing.T) {
	t.Parallel()

	_, resp := ToHTTP(stderrors.New("pq: password authentication failed for user root"))
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_EnvelopeAndRequestID(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	WriteError(rr, req, service.ErrTokenRevoked)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")

	var env ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "token_revoked", env.Error.Code)
	require.Equal(t, "rid-1", env.Error.RequestID)
}

func TestWriteError_ForbiddenHasNoChallenge(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/users", nil), service.ErrForbidden)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Empty(t, rr.Header().Get("WWW-Authenticate"))
}
