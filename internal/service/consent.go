package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ynl8015/LinguaLetter-sub000/internal/consent"
	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

// ConsentInput is one consent submission. Versions are stamped server side
// from the currently published documents.
type ConsentInput struct {
	TermsAccepted   bool `json:"terms_accepted"`
	PrivacyAccepted bool `json:"privacy_accepted"`
	NewsletterOptIn bool `json:"newsletter_opt_in"`
}

// ConsentService appends to and evaluates the consent ledger.
type ConsentService struct {
	repo     repository.ConsentRepository
	versions consent.Versions
	log      *slog.Logger
}

func NewConsentService(repo repository.ConsentRepository, versions consent.Versions, log *slog.Logger) *ConsentService {
	return &ConsentService{repo: repo, versions: versions, log: log}
}

// Record appends a consent record. Both mandatory agreements must be
// accepted; declining is expressed by not submitting.
func (s *ConsentService) Record(ctx context.Context, userID string, input ConsentInput) (*domain.ConsentRecord, error) {
	if !input.TermsAccepted || !input.PrivacyAccepted {
		return nil, apperrors.InvalidInput("terms and privacy policy must be accepted")
	}

	record := &domain.ConsentRecord{
		UserID:            userID,
		TermsAccepted:     input.TermsAccepted,
		PrivacyAccepted:   input.PrivacyAccepted,
		NewsletterOptIn:   input.NewsletterOptIn,
		TermsVersion:      s.versions.Terms,
		PrivacyVersion:    s.versions.Privacy,
		NewsletterVersion: s.versions.Newsletter,
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("record consent: %w", err)
	}

	s.log.InfoContext(ctx, "consent recorded",
		slog.String("user_id", userID),
		slog.Bool("newsletter_opt_in", input.NewsletterOptIn),
	)
	return record, nil
}

// Status evaluates the user's latest record against the current document
// versions.
func (s *ConsentService) Status(ctx context.Context, userID string) (consent.Status, error) {
	latest, err := s.repo.LatestByUser(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return consent.Status{}, fmt.Errorf("consent status: %w", err)
	}
	return consent.Evaluate(latest, s.versions), nil
}
