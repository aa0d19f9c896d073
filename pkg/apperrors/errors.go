package apperrors

import "errors"

var (
	// ErrSchema indicates a missing, malformed or unsupported entity definition.
	ErrSchema = errors.New("invalid entity definition")

	// ErrShape indicates a dataset that does not cover the entity's declared columns.
	ErrShape = errors.New("dataset shape mismatch")

	// ErrConfiguration indicates missing or invalid backend parameters.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrBackend indicates a connection or query failure in the relational backend.
	ErrBackend = errors.New("backend failure")

	// ErrClassification indicates an unexpected state during duplicate/revision
	// resolution, e.g. more than one current version stored for one identifier.
	ErrClassification = errors.New("version classification failed")
)
