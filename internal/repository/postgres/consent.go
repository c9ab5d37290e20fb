package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

type consentRepository struct {
	db DB
}

// NewConsentRepository creates a PostgreSQL-backed consent ledger.
func NewConsentRepository(db DB) repository.ConsentRepository {
	return &consentRepository{db: db}
}

func (r *consentRepository) Insert(ctx context.Context, record *domain.ConsentRecord) error {
	query := `
		INSERT INTO consent_records (user_id, terms_accepted, privacy_accepted, newsletter_opt_in, terms_version, privacy_version, newsletter_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		record.UserID, record.TermsAccepted, record.PrivacyAccepted, record.NewsletterOptIn,
		record.TermsVersion, record.PrivacyVersion, record.NewsletterVersion,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert consent record: %w", err)
	}
	return nil
}

func (r *consentRepository) LatestByUser(ctx context.Context, userID string) (*domain.ConsentRecord, error) {
	query := `
		SELECT id, user_id, terms_accepted, privacy_accepted, newsletter_opt_in, terms_version, privacy_version, newsletter_version, created_at
		FROM consent_records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var rec domain.ConsentRecord
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&rec.ID, &rec.UserID, &rec.TermsAccepted, &rec.PrivacyAccepted, &rec.NewsletterOptIn,
		&rec.TermsVersion, &rec.PrivacyVersion, &rec.NewsletterVersion, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("no consent record for user")
		}
		return nil, fmt.Errorf("latest consent record: %w", err)
	}
	return &rec, nil
}
