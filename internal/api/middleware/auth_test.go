package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lingo-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T, lifetime time.Duration) (*AuthMiddleware, auth.JWTService) {
	t.Helper()
	jwtService := auth.NewHMACJWTService("test-secret-key-thats-32-characters-long", lifetime)
	return NewAuthMiddleware(jwtService), jwtService
}

// okHandler records the user ID the middleware placed in the context.
func okHandler(captured *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetUserID(r); ok {
			*captured = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()

	m, jwtService := newAuthFixture(t, time.Hour)
	userID := uuid.New()

	token, err := jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	var captured uuid.UUID
	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	m.Authenticate(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, captured, "the user ID from the token reaches the handler")
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	m, _ := newAuthFixture(t, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	rec := httptest.NewRecorder()

	var captured uuid.UUID
	m.Authenticate(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, uuid.Nil, captured)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	t.Parallel()

	m, _ := newAuthFixture(t, time.Hour)

	for _, header := range []string{"Bearer", "Basic abc", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		var captured uuid.UUID
		m.Authenticate(okHandler(&captured)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	m, jwtService := newAuthFixture(t, -time.Minute)

	token, err := jwtService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	var captured uuid.UUID
	m.Authenticate(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestAuthenticateRejectsForgedToken(t *testing.T) {
	t.Parallel()

	m, _ := newAuthFixture(t, time.Hour)
	forger := auth.NewHMACJWTService("another-secret-that-is-32-chars-long!", time.Hour)

	token, err := forger.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	var captured uuid.UUID
	m.Authenticate(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}
