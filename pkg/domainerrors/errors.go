package domainerrors

import (
	"errors"
	"net/http"
)

// Code is a stable machine-readable error code surfaced to API clients.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeCapacityExceeded   Code = "capacity_exceeded"
	CodeInvalidOrExpired   Code = "invalid_or_expired"
	CodeGatewayUnavailable Code = "gateway_unavailable"
	CodeInternal           Code = "internal"
)

// DomainError pairs a code with a human-readable message. The message is safe
// to return to callers; anything sensitive belongs in logs, not here.
type DomainError struct {
	Code    Code
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.cause }

// New builds a DomainError with the given code and message.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a cause for logging while keeping the outward code/message.
func Wrap(code Code, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps error codes onto HTTP statuses. CapacityExceeded is 403
// to match the public contract: the request is understood but refused, and
// retrying will not help until capacity frees.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidOrExpired:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeCapacityExceeded:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeGatewayUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
