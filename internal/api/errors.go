package api

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "resume-analyzer/internal/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// APIError is the JSON error body: {"error": ..., "code": ...}.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`

	cause error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func NewValidationError(message string) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: message,
	}
}

func NewTooLargeError(limit int64) *APIError {
	return &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "PAYLOAD_TOO_LARGE",
		Message: fmt.Sprintf("file too large: limit is %d bytes", limit),
	}
}

// NewInternalError carries the cause message to the client.
func NewInternalError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Something went wrong: " + cause.Error(),
		cause:   cause,
	}
}

// ErrorHandler renders every error returned by a handler as an APIError.
// Usage: e.HTTPErrorHandler = api.ErrorHandler(logger)
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    httpErrorCode(httpErr.Code),
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			apiErr = NewInternalError(err)
		}

		if apiErr.Status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("path", c.Request().URL.Path),
				zap.Bool("permanent", errors.Is(err, apperrors.ErrPermanentFailure)),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(apiErr.Status)
		} else {
			err = c.JSON(apiErr.Status, apiErr)
		}
		if err != nil {
			log.Warn("failed to write error response", zap.Error(err))
		}
	}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return "HTTP_ERROR"
	}
}
