package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
	"github.com/gbakws/testimonial-server/internal/store"
)

func TestEnvelopeTransformer(t *testing.T) {
	t.Run("success wraps data", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "200", map[string]string{"k": "v"})
		require.NoError(t, err)

		env, ok := out.(APIEnvelope)
		require.True(t, ok)
		assert.Equal(t, EnvelopeVersion, env.Version)
		assert.True(t, env.Success)
		assert.Equal(t, map[string]string{"k": "v"}, env.Data)
	})

	t.Run("api error becomes error envelope", func(t *testing.T) {
		apiErr := &APIError{status: http.StatusGone, Code: "TOKEN_EXPIRED", Message: "Token has expired"}
		out, err := EnvelopeTransformer(nil, "410", apiErr)
		require.NoError(t, err)

		env, ok := out.(APIErrorEnvelope)
		require.True(t, ok)
		assert.False(t, env.Success)
		assert.Equal(t, "TOKEN_EXPIRED", env.Code)
		assert.Equal(t, "Token has expired", env.Error)
	})

	t.Run("plain error", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "500", errors.New("boom"))
		require.NoError(t, err)

		env, ok := out.(APIEnvelope)
		require.True(t, ok)
		assert.False(t, env.Success)
		assert.Equal(t, "boom", env.Error)
	})

	t.Run("error status without error body", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "400", "bad")
		require.NoError(t, err)
		assert.False(t, out.(APIEnvelope).Success)
	})
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		name       string
		status     int
		errs       []error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "token used",
			status:     http.StatusInternalServerError,
			errs:       []error{domainerrors.TokenUsed("Token already used")},
			wantStatus: http.StatusConflict,
			wantCode:   "TOKEN_USED",
			wantMsg:    "Token already used",
		},
		{
			name:       "token expired",
			status:     http.StatusInternalServerError,
			errs:       []error{domainerrors.TokenExpired("Token has expired")},
			wantStatus: http.StatusGone,
			wantCode:   "TOKEN_EXPIRED",
			wantMsg:    "Token has expired",
		},
		{
			name:       "wrapped storage error hides cause",
			status:     http.StatusInternalServerError,
			errs:       []error{fmt.Errorf("outer: %w", domainerrors.Storage(errors.New("disk full")))},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "STORAGE_ERROR",
			wantMsg:    "storage unavailable, please try again later",
		},
		{
			name:       "store not found",
			status:     http.StatusInternalServerError,
			errs:       []error{store.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "resource not found",
		},
		{
			name:       "schema failure maps to validation",
			status:     http.StatusUnprocessableEntity,
			errs:       []error{&huma.ErrorDetail{Location: "body.token", Message: "expected required property token to be present"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
			wantMsg:    "validation failed",
		},
		{
			name:       "unknown error",
			status:     http.StatusInternalServerError,
			errs:       []error{errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "unexpected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := huma.NewError(tt.status, tt.wantMsg, tt.errs...)

			apiErr, ok := se.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestRegisterErrorHandler_FieldDetails(t *testing.T) {
	RegisterErrorHandler()

	se := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "body.name", Message: "expected string"},
		&huma.ErrorDetail{Location: "query.token", Message: "too long"},
	)

	apiErr, ok := se.(*APIError)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"body.name":   "expected string",
		"query.token": "too long",
	}, apiErr.Details)
}

func TestAPIErrorHelper(t *testing.T) {
	RegisterErrorHandler()
	s := &Server{}
	ctx := context.Background()

	err := s.apiError(ctx, domainerrors.TokenNotFound("Token not found or revoked"))
	se, ok := err.(huma.StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.GetStatus())

	passthrough := &APIError{status: http.StatusTeapot, Code: "X", Message: "x"}
	assert.Same(t, passthrough, s.apiError(ctx, passthrough))

	err = s.apiError(ctx, errors.New("boom"))
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.GetStatus())
	assert.Equal(t, string(domainerrors.CodeInternal), apiErr.Code)
	assert.Equal(t, domainerrors.ErrInternal.Message, apiErr.Message)
}

func TestAPIErrorHelper_LogLevels(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		name      string
		err       error
		wantLevel string
	}{
		{name: "token used", err: domainerrors.TokenUsed("Token already used"), wantLevel: "INFO"},
		{name: "token expired", err: domainerrors.TokenExpired("Token expired"), wantLevel: "INFO"},
		{name: "unknown error", err: errors.New("disk on fire"), wantLevel: "ERROR"},
		{name: "validation", err: domainerrors.Validation("bad input")},
		{name: "storage", err: domainerrors.Storage(errors.New("timeout"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := &Server{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

			_ = s.apiError(context.Background(), tt.err)

			if tt.wantLevel == "" {
				assert.Empty(t, buf.String())
				return
			}
			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Contains(t, entry, "request_id")
		})
	}
}
