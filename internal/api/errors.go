package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/ledger"
	"github.com/phrazzld/lingo-api/internal/service"
	"github.com/phrazzld/lingo-api/internal/service/auth"
	"github.com/phrazzld/lingo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrChallengeNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrProgressNotFound),
		errors.Is(err, store.ErrChallengeNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNoFreezeAvailable),
		errors.Is(err, domain.ErrFreezeAlreadyActive):
		return http.StatusConflict

	// Gone: the challenge period has rolled over
	case errors.Is(err, domain.ErrChallengeExpired):
		return http.StatusGone

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidDelta),
		errors.Is(err, domain.ErrInvalidIncrement),
		errors.Is(err, domain.ErrInvalidSnapshot),
		errors.Is(err, domain.ErrInvalidChallenge),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Engine backpressure
	case errors.Is(err, ledger.ErrQueueFull),
		errors.Is(err, ledger.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, service.ErrChallengeNotOwned):
		return "You do not own this challenge"

	case errors.Is(err, store.ErrProgressNotFound):
		return "Progress not found"

	case errors.Is(err, store.ErrChallengeNotFound):
		return "Challenge not found"

	case errors.Is(err, domain.ErrChallengeExpired):
		return "Challenge has expired"

	case errors.Is(err, domain.ErrInsufficientBalance):
		return "Not enough coins"

	case errors.Is(err, domain.ErrNoFreezeAvailable):
		return "No streak freeze available"

	case errors.Is(err, domain.ErrFreezeAlreadyActive):
		return "A streak freeze is already active"

	case errors.Is(err, domain.ErrInvalidDelta):
		return "XP delta must not be negative"

	case errors.Is(err, domain.ErrInvalidIncrement):
		return "Increment must be positive"

	case errors.Is(err, domain.ErrInvalidSnapshot),
		errors.Is(err, domain.ErrInvalidChallenge),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, ledger.ErrQueueFull),
		errors.Is(err, ledger.ErrQueueClosed):
		return "Service is busy, try again shortly"

	default:
		return "An unexpected error occurred"
	}
}
