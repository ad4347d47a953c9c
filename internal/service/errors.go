package service

import "errors"

// Domain errors shared by all services. Handlers translate these into
// HTTP status codes; nothing below the API boundary knows about HTTP.
var (
	// ErrNotFound means a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint would be violated, or the
	// target of a delete is absent.
	ErrConflict = errors.New("conflict")

	// ErrInvalidRelationship means a self-referential subscription.
	ErrInvalidRelationship = errors.New("invalid relationship")

	// ErrValidation means a malformed or missing required field.
	ErrValidation = errors.New("validation error")

	// ErrForbidden means the caller is not the owner of the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials means login with an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
