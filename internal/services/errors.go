// internal/services/errors.go
package services

import "github.com/kanistore/storefront/internal/models"

// Re-exported so handlers only need to import services.
var (
	ErrNotFound     = models.ErrNotFound
	ErrInvalidInput = models.ErrInvalidInput
	ErrUnavailable  = models.ErrUnavailable
	ErrInternal     = models.ErrInternal
	ErrConflict     = models.ErrConflict
	ErrUnauthorized = models.ErrUnauthorized
)
