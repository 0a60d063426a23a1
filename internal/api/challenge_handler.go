package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lingo-api/internal/api/shared"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/service"
)

// ChallengeHandler handles challenge-related HTTP requests
type ChallengeHandler struct {
	challengeService *service.ChallengeService
	logger           *slog.Logger
}

// NewChallengeHandler creates a new ChallengeHandler
func NewChallengeHandler(challengeService *service.ChallengeService, logger *slog.Logger) *ChallengeHandler {
	if challengeService == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("challengeService and logger cannot be nil for ChallengeHandler")
	}
	return &ChallengeHandler{
		challengeService: challengeService,
		logger:           logger.With(slog.String("component", "challenge_handler")),
	}
}

// GetDailyChallenges handles GET /challenges/daily requests.
// It returns the user's challenges for the current period, generating a
// fresh batch at the adaptively selected difficulty when none exist.
func (h *ChallengeHandler) GetDailyChallenges(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	challenges, err := h.challengeService.GetDaily(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, challenges)
}

// UpdateChallengeProgress handles POST /challenges/{id}/update-progress requests.
// It applies an explicit progress increment to one of the user's challenges.
// Completion is idempotent; the reward is granted exactly once.
func (h *ChallengeHandler) UpdateChallengeProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	challengeID, ok := getPathUUID(r, "id")
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Challenge ID is required and must be a valid UUID")
		return
	}

	var req ChallengeProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	result, err := h.challengeService.UpdateProgress(r.Context(), userID, challengeID, req.Increment)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("challenge progress updated",
		slog.String("user_id", userID.String()),
		slog.String("challenge_id", challengeID.String()),
		slog.Bool("completed", result.IsCompleted))
	shared.RespondWithJSON(w, r, http.StatusOK, ChallengeProgressResponse{
		CurrentProgress: result.CurrentProgress,
		IsCompleted:     result.IsCompleted,
		CoinReward:      result.CoinReward,
		XPReward:        result.XPReward,
		CoinsRemaining:  result.CoinsRemaining,
	})
}
