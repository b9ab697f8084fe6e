package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInsufficientBatch = errors.New("at least two threats required for correlation")
)
