package domain

import "errors"

// Sentinel errors shared across services and controllers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates the request carried malformed or out-of-range data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized indicates a missing or invalid identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
)
