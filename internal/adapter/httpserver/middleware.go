package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/sessiontimer/internal/platform/errors"
)

const (
	msgUnknownEndpoint = "unknown endpoint"
	msgNotFound        = "not found"
)

// ErrorHandlingMiddleware turns every handler error, including echo's own HTTPErrors,
// into the {"ok":false,"error":...} envelope.
func (s *Server) ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			return s.respondError(c, err)
		}
	}
}

// handleHTTPError catches errors raised outside ErrorHandlingMiddleware, such as
// recovered panics.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if err := s.respondError(c, err); err != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to write error response", "error", err)
	}
}

func (s *Server) respondError(c echo.Context, err error) error {
	structuredErr := toStructuredError(err)

	logError(c, structuredErr)
	if s.metrics != nil {
		s.metrics.HTTP.RecordError(string(structuredErr.Type))
	}

	if c.Response().Committed {
		return nil
	}
	return writeJSON(c, structuredErr.HTTPStatus(), structuredErr.ToResponse())
}

func toStructuredError(err error) *apperrors.Error {
	var structuredErr *apperrors.Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return WrapHTTPError(httpErr)
	}
	return apperrors.AsStructuredError(err)
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeRejected:
		slog.WarnContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

// WrapHTTPError converts echo's HTTPError into a structured error. Router misses and
// method mismatches both read as an unknown endpoint.
func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var err *apperrors.Error
	switch {
	case httpErr.Code == http.StatusNotFound, httpErr.Code == http.StatusMethodNotAllowed:
		err = apperrors.NotFoundError(msgUnknownEndpoint)
	case httpErr.Code == http.StatusBadRequest:
		err = apperrors.ValidationError(message)
	case httpErr.Code >= 400 && httpErr.Code < 500:
		err = apperrors.RejectedError(httpErr.Code, message)
	default:
		err = apperrors.InternalError("internal server error", httpErr)
	}

	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}

	return err
}
