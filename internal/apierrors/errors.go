package apierrors

import (
	"fmt"
	"net/http"
)

// APIError is a domain error mapped to an HTTP status, a machine-readable
// code, and a user-safe message. Internal detail stays in Err and is only
// ever logged, never serialized.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Machine-readable error codes returned to API clients.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeEmailExists       = "EMAIL_EXISTS"
	CodeEmailNotFound     = "EMAIL_NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeCampaignNotFound  = "CAMPAIGN_NOT_FOUND"
	CodeContactNotFound   = "CONTACT_NOT_FOUND"
	CodeEmptyFilters      = "EMPTY_FILTERS"
	CodeEmptyQuery        = "EMPTY_QUERY"
	CodeQuotaExhausted    = "QUOTA_EXHAUSTED"
	CodeLeadProviderError = "LEAD_PROVIDER_ERROR"
	CodeEmailServiceError = "EMAIL_SERVICE_ERROR"
	CodeAIServiceError    = "AI_SERVICE_ERROR"
	CodeInternalError     = "INTERNAL_ERROR"
)

// NotFound builds a 404 APIError.
func NotFound(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: code, Message: message}
}

// BadRequest builds a 400 APIError.
func BadRequest(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

// Unauthorized builds a 401 APIError.
func Unauthorized(message string) *APIError {
	return &APIError{StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// Forbidden builds a 403 APIError.
func Forbidden(message string) *APIError {
	return &APIError{StatusCode: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

// Conflict builds a 409 APIError.
func Conflict(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Code: code, Message: message}
}

// TooManyRequests builds a 429 APIError.
func TooManyRequests(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusTooManyRequests, Code: code, Message: message}
}

// ServiceUnavailable builds a 503 APIError carrying the internal cause.
func ServiceUnavailable(code, message string, internalErr error) *APIError {
	return &APIError{StatusCode: http.StatusServiceUnavailable, Code: code, Message: message, Err: internalErr}
}

// InternalError builds a sanitized 500 APIError - never exposes internal details.
func InternalError(internalErr error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    "An internal error occurred. Please try again later.",
		Err:        internalErr,
	}
}
