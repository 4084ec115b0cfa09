package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pribylovaa/user-api/internal/config"
	"github.com/pribylovaa/user-api/internal/service"
	"github.com/pribylovaa/user-api/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"validation", &service.ValidationError{Fields: map[string][]string{"email": {"x"}}}, http.StatusBadRequest, "invalid_argument"},
		{"malformed_body", fmt.Errorf("decode: %w", ErrMalformedBody), http.StatusBadRequest, "invalid_argument"},
		{"unauth", fmt.Errorf("op: %w", service.ErrUnauthenticated), http.StatusUnauthorized, "unauthenticated"},
		{"not_found", fmt.Errorf("op: %w", service.ErrUserNotFound), http.StatusNotFound, "not_found"},
		{"canceled", fmt.Errorf("op: %w", context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"collision", fmt.Errorf("op: %w", service.ErrTokenCollision), http.StatusInternalServerError, "internal"},
		{"unknown", fmt.Errorf("db down"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	t.Parallel()

	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestToHTTP_ValidationFromService_CarriesFields(t *testing.T) {
	t.Parallel()

	svc := service.New(memory.New(), config.AuthConfig{MinPasswordLength: 8, TokenMode: config.TokenModeOpaque})

	_, err := svc.CreateUser(context.Background(), "test@londonappdev.com", "pw", "Test")
	require.Error(t, err)

	status, resp := ToHTTP(err)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, resp.Error.Fields, "password")
	require.NotContains(t, resp.Error.Fields, "email")
}

func TestWriteError_EnvelopeWithRequestID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/user/token", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()

	WriteError(rr, req, &service.ValidationError{Fields: map[string][]string{"non_field_errors": {"bad"}}})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "rid-1", body["error"]["request_id"])
	require.Equal(t, "invalid_argument", body["error"]["code"])
	require.Contains(t, body["error"]["fields"], "non_field_errors")
	require.NotContains(t, body, "token")
}

func TestWriteError_InternalHidesDetails(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, fmt.Errorf("pq: password authentication failed for user postgres"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "postgres")
	require.NotContains(t, rr.Body.String(), "request_id")
}
