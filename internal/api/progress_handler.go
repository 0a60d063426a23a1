// Package api provides HTTP handlers for the API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/api/shared"
	"github.com/phrazzld/lingo-api/internal/domain"
	"github.com/phrazzld/lingo-api/internal/domain/progression"
	"github.com/phrazzld/lingo-api/internal/ledger"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/service"
)

// ProgressHandler handles progress-related HTTP requests
type ProgressHandler struct {
	progressService *service.ProgressService
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progressService *service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if progressService == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progressService and logger cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "progress_handler")),
	}
}

// GetProgress handles GET /progress requests.
// It returns the authenticated user's progress snapshot with the level curve
// applied. Users without recorded activity get a zero snapshot.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	snap, err := h.progressService.GetSnapshot(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snap))
}

// CompleteLesson handles POST /progress/update requests.
// It reports a finished lesson: XP is credited, the streak advances, and the
// committed snapshot is returned.
func (h *ProgressHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CompleteLessonRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	var occurred time.Time
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid occurred_at timestamp")
			return
		}
		occurred = parsed.UTC()
	}

	receipt, err := h.progressService.CompleteLesson(r.Context(), userID, service.LessonCompletion{
		XPGained:         req.XPGained,
		LessonID:         req.LessonID,
		TimeSpentMinutes: req.TimeSpentMinutes,
		IsPerfect:        req.IsPerfect,
		WordsLearned:     req.WordsLearned,
		OccurredAt:       occurred,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	snap, err := waitForSnapshot(r.Context(), receipt)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("lesson completion committed",
		slog.String("user_id", userID.String()),
		slog.Int64("xp_total", snap.XPTotal),
		slog.Int("streak_days", snap.StreakDays))
	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snap))
}

// SubmitAnswer handles POST /exercises/answer requests.
// It feeds one exercise answer into the session combo tracker and reports the
// resulting combo state.
func (h *ProgressHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	result := h.progressService.RecordAnswer(r.Context(), userID, *req.Correct)

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitAnswerResponse{
		Combo:      result.Combo,
		Multiplier: result.Multiplier,
		BonusXP:    result.BonusXP,
	})
}

// PurchaseFreeze handles POST /progress/freeze/purchase requests.
func (h *ProgressHandler) PurchaseFreeze(w http.ResponseWriter, r *http.Request) {
	h.freezeOperation(w, r, h.progressService.PurchaseFreeze)
}

// ActivateFreeze handles POST /progress/freeze requests.
func (h *ProgressHandler) ActivateFreeze(w http.ResponseWriter, r *http.Request) {
	h.freezeOperation(w, r, h.progressService.ActivateFreeze)
}

// freezeOperation runs one freeze economy operation and responds with the
// committed freeze state.
func (h *ProgressHandler) freezeOperation(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID uuid.UUID) (*ledger.Receipt, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	receipt, err := op(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	snap, err := waitForSnapshot(r.Context(), receipt)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, FreezeResponse{
		Coins:           snap.Coins,
		StreakFreezes:   snap.StreakFreezes,
		FreezeExpiresAt: snap.FreezeExpiresAt,
	})
}

// waitForSnapshot blocks on the receipt until the mutation commits or the
// request context ends.
func waitForSnapshot(ctx context.Context, receipt *ledger.Receipt) (*domain.ProgressSnapshot, error) {
	res, err := receipt.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Snapshot, nil
}

// snapshotToResponse maps a snapshot onto its client view.
func snapshotToResponse(snap *domain.ProgressSnapshot) ProgressResponse {
	return ProgressResponse{
		UserID:              snap.UserID,
		XPTotal:             snap.XPTotal,
		Level:               progression.Level(snap.XPTotal),
		ProgressToNextLevel: progression.ProgressToNextLevel(snap.XPTotal),
		StreakDays:          snap.StreakDays,
		MaxStreak:           snap.MaxStreak,
		Coins:               snap.Coins,
		StreakFreezes:       snap.StreakFreezes,
		FreezeExpiresAt:     snap.FreezeExpiresAt,
		SuccessRate:         snap.ChallengeSuccessRate,
		PreferredDifficulty: string(snap.PreferredDifficulty),
		LastLessonAt:        snap.LastLessonAt,
		UpdatedAt:           snap.UpdatedAt,
	}
}
