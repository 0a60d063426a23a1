package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims is the wire representation of Claims.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// HMACJWTService implements JWTService with HS256 signing.
type HMACJWTService struct {
	secret   []byte
	lifetime time.Duration
}

// NewHMACJWTService creates a JWT service signing with the given secret.
// Tokens expire after lifetime.
func NewHMACJWTService(secret string, lifetime time.Duration) *HMACJWTService {
	if secret == "" {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("secret cannot be empty for HMACJWTService")
	}
	return &HMACJWTService{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

var _ JWTService = (*HMACJWTService)(nil)

// GenerateToken implements JWTService.GenerateToken.
func (s *HMACJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	claims := jwtClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken implements JWTService.ValidateToken.
func (s *HMACJWTService) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&jwtClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return s.secret, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: userID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
