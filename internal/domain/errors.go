// Package domain defines the core entities of the insights site API.
package domain

import "errors"

// Sentinel errors shared across layers. Handlers map these to HTTP statuses.
var (
	// ErrNotFound indicates an unknown report slug or download token.
	ErrNotFound = errors.New("not found")

	// ErrTokenUsed indicates a download token that has already been redeemed.
	ErrTokenUsed = errors.New("token already used")

	// ErrSigningUnavailable indicates the object store is not configured or
	// signing failed. The affected request fails; the token is not consumed.
	ErrSigningUnavailable = errors.New("signing unavailable")
)
