// Package common defines shared constants and sentinel errors used across
// the guestbook client and its store backends. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")
	ErrRejected = errors.New("rejected by store")

	// Local pre-check errors. These are detected before any network call is
	// issued and surface as disabled actions or inline guidance, never as
	// raw failures.
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Live subscription errors (advisory: the last-known-good mirror is
	// kept in place).
	ErrSubscription = errors.New("subscription error")

	// Anything a collaborator reports that does not map to the above.
	ErrUnknown = errors.New("unknown error")

	// Identity token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
)
