package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/lingo-api/internal/api/shared"
	"github.com/phrazzld/lingo-api/internal/platform/logger"
	"github.com/phrazzld/lingo-api/internal/service"
)

// LeaderboardHandler handles leaderboard HTTP requests
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	logger             *slog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	if leaderboardService == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("leaderboardService and logger cannot be nil for LeaderboardHandler")
	}
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		logger:             logger.With(slog.String("component", "leaderboard_handler")),
	}
}

// GetLeaderboard handles GET /leaderboard requests.
// It returns the current week's ranked XP leaderboard together with the
// requesting user's own rank. Supports limit and offset query parameters.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	entries, err := h.leaderboardService.Top(r.Context(), limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to load leaderboard", err)
		return
	}

	myRank, err := h.leaderboardService.Rank(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to load leaderboard", err)
		return
	}

	response := LeaderboardResponse{
		Entries: make([]LeaderboardEntryResponse, 0, len(entries)),
		MyRank:  myRank,
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, LeaderboardEntryResponse{
			UserID: e.UserID,
			XP:     e.XP,
			Rank:   e.Rank,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// queryInt parses an integer query parameter, falling back to def on
// absence or bad input.
func queryInt(r *http.Request, name string, def int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
