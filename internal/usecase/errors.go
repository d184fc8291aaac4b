package usecase

import "errors"

var (
	// ErrPermissionDenied indicates the actor lacks the capability for the operation.
	ErrPermissionDenied = errors.New("insufficient permissions")
	// ErrInterventionNotFound is returned when the intervention does not exist.
	ErrInterventionNotFound = errors.New("intervention not found")
	// ErrEstablishmentNotFound is returned when the establishment does not exist.
	ErrEstablishmentNotFound = errors.New("establishment not found")
	// ErrEstablishmentNotAccessible indicates the establishment is outside the user's accessible set.
	ErrEstablishmentNotAccessible = errors.New("establishment not accessible")
	// ErrNoActiveEstablishment indicates the user has no establishment scope to work in.
	ErrNoActiveEstablishment = errors.New("no active establishment")
	// ErrInvalidAction indicates a malformed mutation request.
	ErrInvalidAction = errors.New("invalid action")
	// ErrUnauthenticated indicates no signed-in user was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
)
