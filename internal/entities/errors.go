package entities

import "errors"

var (
	// ErrNotFound indicates no entity has the requested id.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates a malformed entity record or seed file.
	ErrInvalidInput = errors.New("invalid input")
)
