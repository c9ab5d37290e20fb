package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

func newTestNewsletter(t *testing.T) (*NewsletterService, *fakeSubscriberRepo, *countingMailer) {
	t.Helper()
	repo := newFakeSubscriberRepo()
	mail := newCountingMailer()
	svc := NewNewsletterService(repo, mail, noopEvents{}, "https://api.example.com", testLogger())
	return svc, repo, mail
}

func TestNewsletterService_SubscribeLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, mail := newTestNewsletter(t)

	sub, err := svc.Subscribe(ctx, "Reader@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)
	assert.False(t, sub.IsActive)
	assert.Nil(t, sub.ConfirmedAt)
	assert.NotEmpty(t, sub.ConfirmToken)
	assert.NotEmpty(t, sub.UnsubscribeToken)
	assert.Equal(t, 1, mail.sentTo("reader@example.com"))

	confirmed, err := svc.Confirm(ctx, sub.ConfirmToken)
	require.NoError(t, err)
	assert.True(t, confirmed.IsActive)
	require.NotNil(t, confirmed.ConfirmedAt)

	require.NoError(t, svc.UnsubscribeByToken(ctx, sub.UnsubscribeToken))

	// Re-subscribe from Inactive rotates both tokens and resets confirmation.
	resub, err := svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.False(t, resub.IsActive)
	assert.Nil(t, resub.ConfirmedAt)
	assert.NotEqual(t, sub.ConfirmToken, resub.ConfirmToken)
	assert.NotEqual(t, sub.UnsubscribeToken, resub.UnsubscribeToken)

	// The old confirm token is dead after rotation.
	_, err = svc.Confirm(ctx, sub.ConfirmToken)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNewsletterService_Subscribe_ActiveConflict(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestNewsletter(t)

	sub, err := svc.Subscribe(ctx, "a@example.com")
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, sub.ConfirmToken)
	require.NoError(t, err)

	_, err = svc.Subscribe(ctx, "a@example.com")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// No mutation: tokens and state untouched.
	stored, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Equal(t, sub.ConfirmToken, stored.ConfirmToken)
	assert.Equal(t, sub.UnsubscribeToken, stored.UnsubscribeToken)
}

// racingSubscriberRepo rejects the first insert as if a concurrent
// subscribe had won the email unique index, planting the winner's row so
// the retry sees it.
type racingSubscriberRepo struct {
	*fakeSubscriberRepo
	winner *domain.Subscriber
	lost   bool
}

func (r *racingSubscriberRepo) Insert(ctx context.Context, sub *domain.Subscriber) error {
	if !r.lost {
		r.lost = true
		clone := *r.winner
		if err := r.fakeSubscriberRepo.Insert(ctx, &clone); err != nil {
			return err
		}
		return apperrors.AlreadyExists("subscriber already exists")
	}
	return r.fakeSubscriberRepo.Insert(ctx, sub)
}

func TestNewsletterService_Subscribe_RaceCollapsesToUpdate(t *testing.T) {
	ctx := context.Background()
	winner := &domain.Subscriber{
		ID:               "winner-id",
		Email:            "race@example.com",
		ConfirmToken:     "winner-confirm",
		UnsubscribeToken: "winner-unsub",
	}
	repo := &racingSubscriberRepo{fakeSubscriberRepo: newFakeSubscriberRepo(), winner: winner}
	mail := newCountingMailer()
	svc := NewNewsletterService(repo, mail, noopEvents{}, "https://api.example.com", testLogger())

	sub, err := svc.Subscribe(ctx, "race@example.com")
	require.NoError(t, err)
	assert.True(t, repo.lost)

	// The loser lands on the winner's row via the update path, with a
	// fresh token pair, not a conflict and not a second row.
	assert.Equal(t, "winner-id", sub.ID)
	assert.False(t, sub.IsActive)
	assert.Nil(t, sub.ConfirmedAt)
	assert.NotEqual(t, "winner-confirm", sub.ConfirmToken)
	assert.NotEqual(t, "winner-unsub", sub.UnsubscribeToken)
	assert.Equal(t, 1, mail.sentTo("race@example.com"))

	stored, err := repo.GetByEmail(ctx, "race@example.com")
	require.NoError(t, err)
	assert.Equal(t, sub.ConfirmToken, stored.ConfirmToken)
}

func TestNewsletterService_Subscribe_InvalidEmail(t *testing.T) {
	svc, _, _ := newTestNewsletter(t)

	for _, email := range []string{"", "not-an-email", "a@", "@b.com"} {
		_, err := svc.Subscribe(context.Background(), email)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "email %q", email)
	}
}

func TestNewsletterService_Confirm_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestNewsletter(t)

	sub, err := svc.Subscribe(ctx, "a@example.com")
	require.NoError(t, err)

	first, err := svc.Confirm(ctx, sub.ConfirmToken)
	require.NoError(t, err)
	require.NotNil(t, first.ConfirmedAt)

	// A re-clicked link succeeds and the original confirmation time stays.
	second, err := svc.Confirm(ctx, sub.ConfirmToken)
	require.NoError(t, err)
	assert.True(t, second.IsActive)
	assert.Equal(t, first.ConfirmedAt.Unix(), second.ConfirmedAt.Unix())
}

func TestNewsletterService_Confirm_InvalidToken(t *testing.T) {
	svc, _, _ := newTestNewsletter(t)

	_, err := svc.Confirm(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNewsletterService_UnsubscribeByEmail_PermissionMatrix(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestNewsletter(t)

	sub, err := svc.Subscribe(ctx, "owner@example.com")
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, sub.ConfirmToken)
	require.NoError(t, err)

	// Another signed-in user may not unsubscribe the owner.
	err = svc.UnsubscribeByEmail(ctx, "owner@example.com", "intruder@example.com")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Unknown address.
	err = svc.UnsubscribeByEmail(ctx, "ghost@example.com", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The owner themselves, case-insensitive match.
	require.NoError(t, svc.UnsubscribeByEmail(ctx, "owner@example.com", "Owner@Example.COM"))

	// Already inactive: idempotent success.
	require.NoError(t, svc.UnsubscribeByEmail(ctx, "owner@example.com", "owner@example.com"))
}

func TestNewsletterService_TokenShape(t *testing.T) {
	svc, _, _ := newTestNewsletter(t)

	sub, err := svc.Subscribe(context.Background(), "a@example.com")
	require.NoError(t, err)

	// 32 random bytes base64url encode to 43 characters, no padding.
	for _, token := range []string{sub.ConfirmToken, sub.UnsubscribeToken} {
		assert.Len(t, token, 43)
		assert.False(t, strings.ContainsAny(token, "+/="))
	}
	assert.NotEqual(t, sub.ConfirmToken, sub.UnsubscribeToken)
}

func TestNewsletterService_MailFailureKeepsPending(t *testing.T) {
	ctx := context.Background()
	svc, repo, mail := newTestNewsletter(t)
	mail.failFor["a@example.com"] = assert.AnError

	sub, err := svc.Subscribe(ctx, "a@example.com")
	require.NoError(t, err)

	stored, err := repo.GetByEmail(ctx, sub.Email)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.NotEmpty(t, stored.ConfirmToken)
}
