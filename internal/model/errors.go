package model

import "errors"

var (
	// ErrInvalidToken is returned when a connection token is missing,
	// malformed, or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
)
