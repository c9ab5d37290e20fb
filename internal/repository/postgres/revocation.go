package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
)

type revocationRepository struct {
	db DB
}

// NewRevocationRepository creates a PostgreSQL-backed token denylist.
func NewRevocationRepository(db DB) repository.RevocationRepository {
	return &revocationRepository{db: db}
}

func (r *revocationRepository) Insert(ctx context.Context, token *domain.RevokedToken) error {
	// Revoking the same token twice is a no-op, so retried logouts stay
	// idempotent.
	query := `
		INSERT INTO revoked_tokens (token_id, user_id, reason, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, token.TokenID, token.UserID, token.Reason, token.ExpiresAt, token.RevokedAt); err != nil {
		return fmt.Errorf("insert revoked token: %w", err)
	}
	return nil
}

func (r *revocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, tokenID).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

func (r *revocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired revoked tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
