package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentprove/assess-backend/internal/config"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
	return NewAuthService(cfg, rdb)
}

func TestCandidateTokenRoundTrip(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateCandidateToken(ctx, 42)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeCandidate, claims.TokenType)
	assert.Equal(t, 42, claims.UserID)

	require.NoError(t, svc.ValidateCandidateSession(ctx, claims.UserID, claims.ID))
}

func TestNewLoginSupersedesSession(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	first, err := svc.GenerateCandidateToken(ctx, 42)
	require.NoError(t, err)
	firstClaims, err := svc.ValidateToken(first)
	require.NoError(t, err)

	_, err = svc.GenerateCandidateToken(ctx, 42)
	require.NoError(t, err)

	err = svc.ValidateCandidateSession(ctx, firstClaims.UserID, firstClaims.ID)
	assert.ErrorIs(t, err, ErrSessionInvalidated, "older token loses the session")
}

func TestInvalidateCandidateSession(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateCandidateToken(ctx, 42)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateCandidateSession(ctx, 42))
	assert.ErrorIs(t, svc.ValidateCandidateSession(ctx, claims.UserID, claims.ID), ErrSessionInvalidated)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthService(t)

	token, err := svc.GenerateOrganizerToken(7)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeOrganizer, claims.TokenType)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
