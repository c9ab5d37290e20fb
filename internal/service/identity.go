package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ynl8015/LinguaLetter-sub000/internal/auth"
	"github.com/ynl8015/LinguaLetter-sub000/internal/consent"
	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/event"
	"github.com/ynl8015/LinguaLetter-sub000/internal/oauth"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

// LoginResult is a completed sign-in: the stored user, a fresh session
// token, and where the user stands on consent.
type LoginResult struct {
	User    *domain.User   `json:"user"`
	Token   string         `json:"token"`
	Consent consent.Status `json:"consents"`
}

// IdentityService resolves external OAuth profiles into accounts and issues
// session tokens.
type IdentityService struct {
	users       repository.UserRepository
	consents    *ConsentService
	revocations *RevocationService
	providers   map[string]oauth.Client
	sessions    *auth.SessionManager
	admins      auth.AdminPolicy
	events      event.Publisher
	log         *slog.Logger
	now         func() time.Time
}

func NewIdentityService(
	users repository.UserRepository,
	consents *ConsentService,
	revocations *RevocationService,
	providers map[string]oauth.Client,
	sessions *auth.SessionManager,
	admins auth.AdminPolicy,
	events event.Publisher,
	log *slog.Logger,
) *IdentityService {
	return &IdentityService{
		users:       users,
		consents:    consents,
		revocations: revocations,
		providers:   providers,
		sessions:    sessions,
		admins:      admins,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *IdentityService) WithClock(now func() time.Time) *IdentityService {
	s.now = now
	return s
}

// LoginWithCode runs the full code-based flow: exchange the authorization
// code, fetch the profile, then resolve the account. The provider round
// trips happen before any local write; an exchange failure touches no rows.
func (s *IdentityService) LoginWithCode(ctx context.Context, provider, code string) (*LoginResult, error) {
	client, ok := s.providers[provider]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown provider %q", provider))
	}
	if code == "" {
		return nil, apperrors.InvalidInput("missing authorization code")
	}

	accessToken, err := client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := client.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	return s.ResolveAndIssue(ctx, provider, profile)
}

// ResolveAndIssue upserts the account for the profile, recomputes its role
// from the admin allow-list, and issues a session token. Per call it writes
// at most one user row and one zeroed usage stats row.
func (s *IdentityService) ResolveAndIssue(ctx context.Context, provider string, profile *oauth.Profile) (*LoginResult, error) {
	if profile == nil || profile.Email == "" || profile.ExternalID == "" {
		return nil, apperrors.InvalidInput("missing required field in provider profile")
	}
	if provider != domain.ProviderGoogle && provider != domain.ProviderKakao {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown provider %q", provider))
	}

	now := s.now().UTC()

	user := &domain.User{
		ID:          uuid.New().String(),
		Email:       profile.Email,
		Name:        profile.Name,
		PictureURL:  profile.PictureURL,
		Role:        s.roleFor(profile.Email),
		CreatedAt:   now,
		LastLoginAt: now,
	}
	user.SetExternalID(provider, profile.ExternalID)

	// A returning user whose provider email changed is still found by the
	// stable external ID; the stored email wins.
	if existing, err := s.users.GetByExternalID(ctx, provider, profile.ExternalID); err == nil {
		user.Email = existing.Email
		user.Role = s.roleFor(existing.Email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	stored, err := s.users.Upsert(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.users.EnsureUsageStats(ctx, stored.ID); err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(stored, provider)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	status, err := s.consents.Status(ctx, stored.ID)
	if err != nil {
		return nil, err
	}

	s.events.UserLoggedIn(ctx, stored, provider)
	s.log.InfoContext(ctx, "user logged in",
		slog.String("user_id", stored.ID),
		slog.String("provider", provider),
		slog.String("role", stored.Role),
	)

	return &LoginResult{User: stored, Token: token, Consent: status}, nil
}

func (s *IdentityService) roleFor(email string) string {
	if s.admins.IsAdmin(email) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// ValidateSession is the token validator behind authenticated routes: it
// checks signature and expiry, then consults the denylist.
func (s *IdentityService) ValidateSession(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := s.sessions.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("session has been revoked")
	}
	return claims, nil
}

// Logout revokes the presented token. Malformed or absent tokens are not
// errors; logout always succeeds from the client's point of view.
func (s *IdentityService) Logout(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return nil
	}
	return s.revocations.Revoke(ctx, tokenString, domain.RevokeReasonLogout)
}

// CurrentUser loads the account plus its usage stats.
func (s *IdentityService) CurrentUser(ctx context.Context, userID string) (*domain.User, *domain.UsageStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.users.GetUsageStats(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, err
	}
	return user, stats, nil
}

// DeleteAccount revokes the presented session token and removes the user.
// Dependent rows cascade; the denylist entry outlives the account so the
// deleted user's token stays dead.
func (s *IdentityService) DeleteAccount(ctx context.Context, userID, tokenString string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.revocations.Revoke(ctx, tokenString, domain.RevokeReasonAccountDeleted); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.events.UserDeleted(ctx, user)
	s.log.InfoContext(ctx, "account deleted", slog.String("user_id", userID))
	return nil
}
