package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-thats-32-characters-long"

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	service := NewHMACJWTService(testSecret, time.Hour)
	userID := uuid.New()

	token, err := service.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, time.Now().UTC(), claims.IssuedAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()

	service := NewHMACJWTService(testSecret, -time.Minute)

	token, err := service.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = service.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewHMACJWTService(testSecret, time.Hour)
	verifier := NewHMACJWTService("a-different-secret-also-32-chars-ok", time.Hour)

	token, err := issuer.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMalformed(t *testing.T) {
	t.Parallel()

	service := NewHMACJWTService(testSecret, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := service.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestNewHMACJWTServiceEmptySecretPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewHMACJWTService("", time.Hour)
	})
}
