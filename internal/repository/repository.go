// Package repository defines the persistence interfaces the services depend
// on. Implementations live in subpackages.
package repository

import (
	"context"
	"time"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
)

// UserRepository persists accounts and their usage stats.
type UserRepository interface {
	// Upsert inserts the user or, when the email already exists, refreshes
	// profile fields, role and last login and merges the provider ID.
	// Returns the stored row.
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)

	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error)

	// Delete removes the user. Dependent rows cascade.
	Delete(ctx context.Context, id string) error

	// EnsureUsageStats creates a zeroed stats row if none exists.
	EnsureUsageStats(ctx context.Context, userID string) error
	GetUsageStats(ctx context.Context, userID string) (*domain.UsageStats, error)
}

// ConsentRepository is the append-only consent ledger.
type ConsentRepository interface {
	// Insert appends a record and fills in its ID and CreatedAt.
	Insert(ctx context.Context, record *domain.ConsentRecord) error

	// LatestByUser returns the newest record, or ErrNotFound.
	LatestByUser(ctx context.Context, userID string) (*domain.ConsentRecord, error)
}

// RevocationRepository is the session token denylist.
type RevocationRepository interface {
	// Insert adds a denylist entry. Re-inserting an existing token ID is a
	// no-op.
	Insert(ctx context.Context, token *domain.RevokedToken) error

	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// DeleteExpired prunes entries whose token has expired on its own and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SubscriberRepository persists newsletter subscriptions.
type SubscriberRepository interface {
	Insert(ctx context.Context, sub *domain.Subscriber) error
	Update(ctx context.Context, sub *domain.Subscriber) error

	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	GetByConfirmToken(ctx context.Context, token string) (*domain.Subscriber, error)
	GetByUnsubscribeToken(ctx context.Context, token string) (*domain.Subscriber, error)

	// ListActive returns the confirmed, active subscribers.
	ListActive(ctx context.Context) ([]*domain.Subscriber, error)
}

// ArticleRepository persists generated briefs and the latest-brief pointer.
type ArticleRepository interface {
	Insert(ctx context.Context, article *domain.Article) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)

	// SetLatest points the single-row latest marker at the article.
	SetLatest(ctx context.Context, articleID string) error

	// GetLatest returns the article the marker points at, or ErrNotFound
	// when no brief has been generated yet.
	GetLatest(ctx context.Context) (*domain.Article, error)
}
