package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describes a single per-field validation failure surfaced to clients.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError provides a structured error that can be rendered to API consumers.
// MessageKey is resolved against the locale catalog when writing the response;
// Message is the untranslated fallback.
type AppError struct {
	Code       string       `json:"code"`
	MessageKey string       `json:"-"`
	Message    string       `json:"message"`
	StatusCode int          `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
	Internal   error        `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithDetails returns a copy of the AppError carrying per-field failures.
func (e *AppError) WithDetails(details ...FieldError) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Details = details
	return &cpy
}

// Is reports whether target shares this error's code, so sentinel comparisons
// keep working on copies produced by WithInternal / WithDetails.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e != nil && appErr != nil && e.Code == appErr.Code
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		MessageKey: "error.unauthorized",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		MessageKey: "error.invalid_credentials",
		Message:    "Invalid username or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		MessageKey: "error.forbidden",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		MessageKey: "error.not_found",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		MessageKey: "error.conflict",
		Message:    "Resource already exists",
		StatusCode: http.StatusConflict,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		MessageKey: "error.validation",
		Message:    "Invalid input data",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		MessageKey: "error.bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		MessageKey: "error.internal",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		MessageKey: "error.rate_limit",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		MessageKey: "error.internal",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps malformed-payload errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		MessageKey: ErrBadRequest.MessageKey,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewValidation builds a 422 validation error with itemized field failures.
func NewValidation(message string, details ...FieldError) *AppError {
	return &AppError{
		Code:       ErrValidation.Code,
		MessageKey: ErrValidation.MessageKey,
		Message:    message,
		StatusCode: ErrValidation.StatusCode,
		Details:    details,
	}
}
