package service

import "errors"

// Service-level errors.
var (
	// ErrChallengeNotOwned is returned when a user reports progress against
	// another user's challenge.
	ErrChallengeNotOwned = errors.New("challenge does not belong to user")
)
