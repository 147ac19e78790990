package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidEntity = errors.New("invalid entity")
)
