package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ynl8015/LinguaLetter-sub000/internal/auth"
	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
)

// RevocationService maintains the session token denylist. Tokens are
// self-expiring, so the denylist only needs to remember a token until its
// natural expiry passes.
type RevocationService struct {
	repo     repository.RevocationRepository
	sessions *auth.SessionManager
	cache    *redis.Client
	log      *slog.Logger
	now      func() time.Time
}

// NewRevocationService creates the denylist service. cache may be nil;
// revocation checks then go straight to PostgreSQL.
func NewRevocationService(repo repository.RevocationRepository, sessions *auth.SessionManager, cache *redis.Client, log *slog.Logger) *RevocationService {
	return &RevocationService{
		repo:     repo,
		sessions: sessions,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *RevocationService) WithClock(now func() time.Time) *RevocationService {
	s.now = now
	return s
}

func cacheKey(tokenID string) string {
	return "revoked:" + tokenID
}

// Revoke denylists the token until its own expiry. A malformed token is
// logged and skipped; logout never fails on it. Revoking the same token
// twice is a no-op.
func (s *RevocationService) Revoke(ctx context.Context, tokenString, reason string) error {
	claims, err := s.sessions.ParseUnverified(tokenString)
	if err != nil {
		s.log.WarnContext(ctx, "revocation skipped, token unparseable", slog.Any("error", err))
		return nil
	}

	// Piggyback pruning on revocations; the denylist stays small without a
	// dedicated janitor.
	if _, err := s.PurgeExpired(ctx); err != nil {
		s.log.WarnContext(ctx, "purge expired revocations", slog.Any("error", err))
	}

	now := s.now().UTC()
	entry := &domain.RevokedToken{
		TokenID:   claims.TokenID(),
		UserID:    claims.UserID,
		Reason:    reason,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: now,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	if s.cache != nil {
		ttl := entry.ExpiresAt.Sub(now)
		if ttl > 0 {
			if err := s.cache.Set(ctx, cacheKey(entry.TokenID), "1", ttl).Err(); err != nil {
				s.log.WarnContext(ctx, "cache revocation", slog.Any("error", err))
			}
		}
	}

	s.log.InfoContext(ctx, "session token revoked",
		slog.String("user_id", claims.UserID),
		slog.String("reason", reason),
	)
	return nil
}

// IsRevoked reports whether the token ID is denylisted. The Redis cache is
// consulted first; cache errors degrade to the database.
func (s *RevocationService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.cache != nil {
		_, err := s.cache.Get(ctx, cacheKey(tokenID)).Result()
		switch {
		case err == nil:
			return true, nil
		case err != redis.Nil:
			s.log.WarnContext(ctx, "revocation cache read", slog.Any("error", err))
		}
	}

	revoked, err := s.repo.IsRevoked(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// PurgeExpired removes entries whose token has expired on its own.
func (s *RevocationService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		revokedTokensPurged.Add(float64(n))
	}
	return n, nil
}
