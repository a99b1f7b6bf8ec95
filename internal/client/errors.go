// internal/client/errors.go
package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classes returned by CatalogClient, matching the server's codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("catalog unavailable")
	ErrInternal     = errors.New("internal error")

	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a failure response from the catalog API.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
		kind:    classify(status, code),
	}
}

func classify(status int, code string) error {
	switch code {
	case "NOT_FOUND":
		return ErrNotFound
	case "INVALID_INPUT":
		return ErrInvalidInput
	case "UNAVAILABLE", "RATE_LIMITED":
		return ErrUnavailable
	case "INTERNAL":
		return ErrInternal
	case "UNAUTHORIZED":
		return ErrUnauthorized
	}

	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest:
		return ErrInvalidInput
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests,
		status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
