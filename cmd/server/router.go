package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lingo-api/internal/api"
	apiMiddleware "github.com/phrazzld/lingo-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)
	challengeHandler := api.NewChallengeHandler(app.challengeService, app.logger)
	leaderboardHandler := api.NewLeaderboardHandler(app.leaderboardService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Progress endpoints
			r.Get("/progress", progressHandler.GetProgress)
			r.Post("/progress/update", progressHandler.CompleteLesson)
			r.Post("/progress/freeze", progressHandler.ActivateFreeze)
			r.Post("/progress/freeze/purchase", progressHandler.PurchaseFreeze)

			// Exercise endpoints
			r.Post("/exercises/answer", progressHandler.SubmitAnswer)

			// Challenge endpoints
			r.Get("/challenges/daily", challengeHandler.GetDailyChallenges)
			r.Post("/challenges/{id}/update-progress", challengeHandler.UpdateChallengeProgress)

			// Leaderboard endpoints
			r.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
