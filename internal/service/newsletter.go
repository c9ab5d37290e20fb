package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/event"
	"github.com/ynl8015/LinguaLetter-sub000/internal/mailer"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

// NewsletterService drives the subscription lifecycle: Pending on
// subscribe, Active on confirm, Inactive on unsubscribe, back to Pending on
// re-subscribe.
type NewsletterService struct {
	repo    repository.SubscriberRepository
	mail    mailer.Mailer
	events  event.Publisher
	baseURL string
	log     *slog.Logger
	now     func() time.Time
}

// NewNewsletterService creates the subscription service. baseURL is the
// public origin used to build confirm and unsubscribe links.
func NewNewsletterService(repo repository.SubscriberRepository, mail mailer.Mailer, events event.Publisher, baseURL string, log *slog.Logger) *NewsletterService {
	return &NewsletterService{
		repo:    repo,
		mail:    mail,
		events:  events,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		now:     time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *NewsletterService) WithClock(now func() time.Time) *NewsletterService {
	s.now = now
	return s
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperrors.InvalidInput("invalid email address")
	}
	return email, nil
}

// Subscribe starts or restarts a subscription. An active subscriber gets a
// conflict and no mutation; a pending or inactive one gets a fresh token
// pair and must confirm again.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	sub, err := s.subscribe(ctx, email)
	if err != nil {
		// Two concurrent first-time subscribes race on the email unique
		// index; the loser retries and lands on the update path.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			sub, err = s.subscribe(ctx, email)
		}
		if err != nil {
			return nil, err
		}
	}

	s.sendConfirmMail(ctx, sub)
	s.events.NewsletterSubscribed(ctx, sub)
	return sub, nil
}

func (s *NewsletterService) subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsActive {
			return nil, apperrors.Conflict("already subscribed")
		}
		if err := s.rotateTokens(existing); err != nil {
			return nil, err
		}
		existing.IsActive = false
		existing.ConfirmedAt = nil
		existing.SubscribedAt = s.now().UTC()
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil

	case errors.Is(err, apperrors.ErrNotFound):
		sub := &domain.Subscriber{
			ID:           uuid.New().String(),
			Email:        email,
			SubscribedAt: s.now().UTC(),
		}
		if err := s.rotateTokens(sub); err != nil {
			return nil, err
		}
		if err := s.repo.Insert(ctx, sub); err != nil {
			return nil, err
		}
		return sub, nil

	default:
		return nil, fmt.Errorf("subscribe: %w", err)
	}
}

func (s *NewsletterService) rotateTokens(sub *domain.Subscriber) error {
	var err error
	if sub.ConfirmToken, err = newOpaqueToken(); err != nil {
		return err
	}
	sub.UnsubscribeToken, err = newOpaqueToken()
	return err
}

// Confirm activates the subscription behind the confirm token. Confirming
// an already active subscription succeeds without touching anything; the
// token stays valid so a re-clicked link never shows an error.
func (s *NewsletterService) Confirm(ctx context.Context, token string) (*domain.Subscriber, error) {
	sub, err := s.repo.GetByConfirmToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("invalid confirmation token")
		}
		return nil, fmt.Errorf("confirm: %w", err)
	}

	if sub.IsActive {
		return sub, nil
	}

	now := s.now().UTC()
	sub.IsActive = true
	sub.ConfirmedAt = &now
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.events.NewsletterConfirmed(ctx, sub)
	s.log.InfoContext(ctx, "subscription confirmed", slog.String("subscriber_id", sub.ID))
	return sub, nil
}

// UnsubscribeByToken deactivates the subscription behind the one-click
// unsubscribe token. Idempotent.
func (s *NewsletterService) UnsubscribeByToken(ctx context.Context, token string) error {
	sub, err := s.repo.GetByUnsubscribeToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("invalid unsubscribe token")
		}
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return s.deactivate(ctx, sub)
}

// UnsubscribeByEmail deactivates by address. requesterEmail, when set, must
// match; a signed-in user can only unsubscribe themselves.
func (s *NewsletterService) UnsubscribeByEmail(ctx context.Context, email, requesterEmail string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if requesterEmail != "" && !strings.EqualFold(requesterEmail, email) {
		return apperrors.Forbidden("cannot unsubscribe another address")
	}

	sub, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("not subscribed")
		}
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return s.deactivate(ctx, sub)
}

func (s *NewsletterService) deactivate(ctx context.Context, sub *domain.Subscriber) error {
	if !sub.IsActive {
		return nil
	}
	sub.IsActive = false
	if err := s.repo.Update(ctx, sub); err != nil {
		return err
	}

	s.events.NewsletterUnsubscribed(ctx, sub)
	s.log.InfoContext(ctx, "unsubscribed", slog.String("subscriber_id", sub.ID))
	return nil
}

// ActiveSubscribers returns the current confirmed subscriber snapshot.
func (s *NewsletterService) ActiveSubscribers(ctx context.Context) ([]*domain.Subscriber, error) {
	return s.repo.ListActive(ctx)
}

func (s *NewsletterService) sendConfirmMail(ctx context.Context, sub *domain.Subscriber) {
	confirmURL := fmt.Sprintf("%s/api/v1/newsletter/confirm/%s", s.baseURL, sub.ConfirmToken)
	msg := mailer.Message{
		To:      sub.Email,
		Subject: "Confirm your LinguaLetter subscription",
		Text:    fmt.Sprintf("Confirm your subscription: %s", confirmURL),
		HTML:    fmt.Sprintf(`<p>Welcome to LinguaLetter!</p><p><a href="%s">Confirm your subscription</a></p>`, confirmURL),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		// Subscriber stays pending; they can subscribe again to get a new
		// mail.
		s.log.ErrorContext(ctx, "send confirmation mail",
			slog.String("subscriber_id", sub.ID),
			slog.Any("error", err),
		)
	}
}
