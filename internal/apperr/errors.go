// Package apperr holds the error kinds shared across layers.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrStorage         = errors.New("storage unavailable")
	ErrNothingSelected = errors.New("nothing selected")
)
