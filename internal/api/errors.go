package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		fieldErrors := make(map[string]string)

		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			if errors.Is(err, store.ErrNotFound) {
				return &APIError{
					status:  http.StatusNotFound,
					Code:    string(domainerrors.CodeNotFound),
					Message: err.Error(),
				}
			}

			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				fieldErrors[detail.Location] = detail.Message
			}
		}

		// Request schema failures are client validation errors.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if len(fieldErrors) > 0 {
			apiErr.Details = fieldErrors
		}
		return apiErr
	}
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusServiceUnavailable:
		return string(domainerrors.CodeStorage)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// apiError converts a service error into a huma.StatusError so the
// response carries the mapped status rather than a blanket 500.
// Token outcomes are logged at info. Errors that are not domain errors
// are logged at error and answered with a generic internal error.
func (s *Server) apiError(ctx context.Context, err error) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		if domainErr.Code.IsTokenState() {
			s.log(ctx, slog.LevelInfo, "token rejected", "code", domainErr.Code)
		}
		return huma.NewError(domainErr.HTTPStatus(), domainErr.Message, domainErr)
	}

	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}

	s.log(ctx, slog.LevelError, "unhandled error", logger.Err(err))
	return huma.NewError(http.StatusInternalServerError, domainerrors.ErrInternal.Message, domainerrors.ErrInternal.WithCause(err))
}

func (s *Server) log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	if s.logger == nil {
		return
	}
	attrs = append(attrs, "request_id", middleware.GetReqID(ctx))
	s.logger.Log(ctx, level, msg, attrs...)
}
