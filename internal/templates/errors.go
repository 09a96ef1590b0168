package templates

import "errors"

var (
	// ErrNotFound indicates no template with the requested id is loaded.
	ErrNotFound = errors.New("template not found")

	// ErrInvalidInput indicates a template file could not be used.
	ErrInvalidInput = errors.New("invalid template")
)
