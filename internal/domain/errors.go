package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrAlreadyAssigned means a phone number is bound to a different user.
	// A number is never silently stolen; the caller must pick another.
	ErrAlreadyAssigned = errors.New("phone number already assigned")

	// ErrConcurrentUpdate is surfaced after the optimistic write loop
	// exhausts its retries. Transient; the caller may retry.
	ErrConcurrentUpdate = errors.New("concurrent update conflict")

	// ErrCollaboratorUnavailable wraps transient failures of external
	// collaborators (billing, SMS). The local cache is left untouched.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrRateLimited means a caller exceeded the verification attempt window.
	ErrRateLimited = errors.New("rate limited")
)
