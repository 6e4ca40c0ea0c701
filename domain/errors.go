package domain

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// ErrProvider marks embedding or vector search failures. The ranking
	// engine recovers from it locally and it never reaches a caller.
	ErrProvider = errors.New("provider error")
)
