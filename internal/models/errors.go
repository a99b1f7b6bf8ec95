// internal/models/errors.go
package models

import "errors"

// Error classes shared by the store, the services and the HTTP layer.
// Callers wrap them with fmt.Errorf("...: %w", ...) and match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("store unavailable")
	ErrInternal     = errors.New("internal error")

	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
)
