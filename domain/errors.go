// Package domain holds types shared across the gatekit registries: the
// error sentinels checked at every layer boundary and the JSON column type
// used by the GORM models.
package domain

import "errors"

var (
	// ErrNotFound is returned when a queried or mutated record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned for malformed input, such as an empty
	// identifier in a grant request.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a write violates a uniqueness constraint
	// that the operation does not resolve itself.
	ErrConflict = errors.New("record already exists")
)
