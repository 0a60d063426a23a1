package domain

import "errors"

// Validation and business-rule errors shared across the engine.
var (
	// ErrInvalidDelta is returned when a mutation carries a negative XP or
	// coin amount. Such mutations are rejected before they reach the queue.
	ErrInvalidDelta = errors.New("delta cannot be negative")

	// ErrStaleTimestamp indicates that an event timestamp predates the last
	// recorded lesson. The XP delta is still applied but the streak machine
	// treats the event as a no-op.
	ErrStaleTimestamp = errors.New("timestamp predates last recorded lesson")

	// ErrInsufficientBalance is returned when a coin debit exceeds the
	// current balance. The debit is rejected before being enqueued.
	ErrInsufficientBalance = errors.New("insufficient coin balance")

	// ErrNoFreezeAvailable is returned when a freeze activation is requested
	// but the user holds no streak freezes.
	ErrNoFreezeAvailable = errors.New("no streak freeze available")

	// ErrFreezeAlreadyActive is returned when a freeze activation is
	// requested while another freeze is still within its 24h window.
	ErrFreezeAlreadyActive = errors.New("a streak freeze is already active")

	// ErrChallengeExpired is returned when progress is reported against a
	// challenge whose expiry has passed.
	ErrChallengeExpired = errors.New("challenge has expired")

	// ErrInvalidIncrement is returned when a challenge progress increment is
	// zero or negative.
	ErrInvalidIncrement = errors.New("increment must be positive")

	// ErrInvalidSnapshot is returned when a progress snapshot fails invariant
	// validation before persistence.
	ErrInvalidSnapshot = errors.New("invalid progress snapshot")

	// ErrInvalidChallenge is returned when a challenge fails validation.
	ErrInvalidChallenge = errors.New("invalid challenge")
)
