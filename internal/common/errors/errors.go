package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

	// Dispatch pipeline errors
	ErrCodeUnresolvableIdentity ErrorCode = "UNRESOLVABLE_IDENTITY"
	ErrCodeInvalidCallback      ErrorCode = "INVALID_CALLBACK_FORMAT"

	// Hubstaff API errors
	ErrCodeUpstreamAuth        ErrorCode = "UPSTREAM_AUTH_FAILURE"
	ErrCodeUpstreamForbidden   ErrorCode = "UPSTREAM_ACCESS_DENIED"
	ErrCodeUpstreamNotFound    ErrorCode = "UPSTREAM_NOT_FOUND"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeOAuthExchange       ErrorCode = "OAUTH_EXCHANGE_FAILURE"

	// Infrastructure errors
	ErrCodeDatabase    ErrorCode = "DATABASE_ERROR"
	ErrCodeTelegramAPI ErrorCode = "TELEGRAM_API_ERROR"
)

// AppError is a typed application error carrying a stable code.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf оборачивает существующую ошибку с форматированием
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// AsAppError приводит ошибку к AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// UserText maps an error to the plain-text reply shown in chat. Raw
// upstream payloads never reach the user; only the 403 message is
// surfaced, as the original behavior requires.
func UserText(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return "Something went wrong. Please try again."
	}
	switch appErr.Code {
	case ErrCodeInvalidCallback:
		return "Invalid request format."
	case ErrCodeUpstreamAuth:
		return "Hubstaff authentication failed. Please reconnect with /hubstaff_login."
	case ErrCodeUpstreamForbidden:
		return "Access denied: " + appErr.Message
	case ErrCodeUpstreamNotFound:
		return "The requested data is not available."
	case ErrCodeUpstreamUnavailable:
		return "Hubstaff is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong. Please try again."
	}
}

// HTTPStatus maps an error to the status returned by the OAuth
// callback endpoint: 400 for a failed exchange (including the provider
// being unreachable), 500 for anything unexpected.
func HTTPStatus(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case ErrCodeOAuthExchange, ErrCodeUpstreamUnavailable:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
