package domain

import "errors"

// Sentinel errors shared across packages building on the domain model,
// matching spec §7's distinct-conflict requirement for a duplicate session
// attempt and the fatal cases around storage and enumeration.
var (
	// ErrSessionActive is returned when a daemon already has a Running
	// session and a second one is requested.
	ErrSessionActive = errors.New("a discovery session is already active for this daemon")

	// ErrSessionNotFound is returned when an operation references an
	// unknown session id.
	ErrSessionNotFound = errors.New("discovery session not found")

	// ErrCancelled is returned by a probe or subnet scan that observed a
	// cancellation request.
	ErrCancelled = errors.New("discovery cancelled")

	// ErrNotFound is a generic not-found for repository lookups.
	ErrNotFound = errors.New("entity not found")

	// ErrSubnetEnumeration is returned when target enumeration fails
	// unrecoverably; per spec §7 this is fatal for the session.
	ErrSubnetEnumeration = errors.New("subnet enumeration failed")
)
