package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynl8015/LinguaLetter-sub000/internal/auth"
	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
)

const testSecret = "test-secret-key-that-is-long-enough"

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRevocationService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	sessions := auth.NewSessionManager(testSecret, time.Hour)
	repo := newFakeRevocationRepo()
	svc := NewRevocationService(repo, sessions, nil, testLogger())

	issuedAt := time.Now()
	sessions.WithClock(func() time.Time { return issuedAt })
	token, err := sessions.Issue(&domain.User{ID: "u-1", Email: "a@example.com", Role: domain.RoleUser}, domain.ProviderGoogle)
	require.NoError(t, err)

	tokenID := domain.TokenID("u-1", issuedAt)

	revoked, err := svc.IsRevoked(ctx, tokenID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Revoke(ctx, token, domain.RevokeReasonLogout))

	revoked, err = svc.IsRevoked(ctx, tokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Revoking again is a no-op.
	require.NoError(t, svc.Revoke(ctx, token, domain.RevokeReasonLogout))

	// Before the token's own expiry the purge removes nothing.
	svc.WithClock(func() time.Time { return issuedAt.Add(30 * time.Minute) })
	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// After expiry the entry is pruned and the check clears.
	svc.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	n, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err = svc.IsRevoked(ctx, tokenID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationService_Revoke_MalformedToken(t *testing.T) {
	sessions := auth.NewSessionManager(testSecret, time.Hour)
	repo := newFakeRevocationRepo()
	svc := NewRevocationService(repo, sessions, nil, testLogger())

	// Unparseable tokens are skipped, not errors; logout must still succeed.
	assert.NoError(t, svc.Revoke(context.Background(), "garbage", domain.RevokeReasonLogout))
	assert.Empty(t, repo.tokens)
}
