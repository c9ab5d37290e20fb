package service

import (
	"context"
	"sync"
	"time"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/mailer"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

// In-memory fakes backing the service tests. They enforce the same
// uniqueness rules as the schema so lifecycle tests exercise real state
// transitions.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	stats map[string]*domain.UsageStats
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}, stats: map[string]*domain.UsageStats{}}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			if gid := user.GoogleID; gid != "" {
				u.GoogleID = gid
			}
			if kid := user.KakaoID; kid != "" {
				u.KakaoID = kid
			}
			u.Name = user.Name
			u.PictureURL = user.PictureURL
			u.Role = user.Role
			u.LastLoginAt = user.LastLoginAt
			clone := *u
			return &clone, nil
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *fakeUserRepo) GetByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID(provider) == externalID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.NotFound("user not found")
	}
	delete(r.users, id)
	delete(r.stats, id)
	return nil
}

func (r *fakeUserRepo) EnsureUsageStats(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stats[userID]; !ok {
		r.stats[userID] = &domain.UsageStats{UserID: userID, UpdatedAt: time.Now()}
	}
	return nil
}

func (r *fakeUserRepo) GetUsageStats(ctx context.Context, userID string) (*domain.UsageStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stats[userID]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, apperrors.NotFound("usage stats not found")
}

type fakeConsentRepo struct {
	mu      sync.Mutex
	records []*domain.ConsentRecord
	nextID  int64
}

func (r *fakeConsentRepo) Insert(ctx context.Context, record *domain.ConsentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = r.nextID
	record.CreatedAt = time.Now()
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *fakeConsentRepo) LatestByUser(ctx context.Context, userID string) (*domain.ConsentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			clone := *r.records[i]
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("no consent record for user")
}

type fakeRevocationRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RevokedToken
}

func newFakeRevocationRepo() *fakeRevocationRepo {
	return &fakeRevocationRepo{tokens: map[string]*domain.RevokedToken{}}
}

func (r *fakeRevocationRepo) Insert(ctx context.Context, token *domain.RevokedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.TokenID]; ok {
		return nil
	}
	clone := *token
	r.tokens[token.TokenID] = &clone
	return nil
}

func (r *fakeRevocationRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tokens[tokenID]
	return ok, nil
}

func (r *fakeRevocationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

type fakeSubscriberRepo struct {
	mu   sync.Mutex
	subs map[string]*domain.Subscriber
}

func newFakeSubscriberRepo() *fakeSubscriberRepo {
	return &fakeSubscriberRepo{subs: map[string]*domain.Subscriber{}}
}

func (r *fakeSubscriberRepo) Insert(ctx context.Context, sub *domain.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.Email == sub.Email {
			return apperrors.AlreadyExists("subscriber already exists")
		}
	}
	clone := *sub
	r.subs[sub.ID] = &clone
	return nil
}

func (r *fakeSubscriberRepo) Update(ctx context.Context, sub *domain.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.ID]; !ok {
		return apperrors.NotFound("subscriber not found")
	}
	clone := *sub
	r.subs[sub.ID] = &clone
	return nil
}

func (r *fakeSubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	return r.find(func(s *domain.Subscriber) bool { return s.Email == email })
}

func (r *fakeSubscriberRepo) GetByConfirmToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	return r.find(func(s *domain.Subscriber) bool { return s.ConfirmToken == token })
}

func (r *fakeSubscriberRepo) GetByUnsubscribeToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	return r.find(func(s *domain.Subscriber) bool { return s.UnsubscribeToken == token })
}

func (r *fakeSubscriberRepo) find(match func(*domain.Subscriber) bool) (*domain.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if match(s) {
			clone := *s
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("subscriber not found")
}

func (r *fakeSubscriberRepo) ListActive(ctx context.Context) ([]*domain.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Subscriber
	for _, s := range r.subs {
		if s.IsActive {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*domain.Article
	latestID string
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: map[string]*domain.Article{}}
}

func (r *fakeArticleRepo) Insert(ctx context.Context, article *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *article
	r.articles[article.ID] = &clone
	return nil
}

func (r *fakeArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.articles[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, apperrors.NotFound("article not found")
}

func (r *fakeArticleRepo) SetLatest(ctx context.Context, articleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latestID = articleID
	return nil
}

func (r *fakeArticleRepo) GetLatest(ctx context.Context) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.articles[r.latestID]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, apperrors.NotFound("no brief generated yet")
}

// countingMailer records every send and can be told to fail for specific
// recipients.
type countingMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]error
}

func newCountingMailer() *countingMailer {
	return &countingMailer{failFor: map[string]error{}}
}

func (m *countingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if err, ok := m.failFor[msg.To]; ok {
		return err
	}
	return nil
}

func (m *countingMailer) sentTo(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.sent {
		if msg.To == email {
			n++
		}
	}
	return n
}

type fakeGenerator struct {
	article *domain.Article
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context) (*domain.Article, error) {
	if g.err != nil {
		return nil, g.err
	}
	clone := *g.article
	return &clone, nil
}

// noopEvents satisfies event.Publisher without a broker.
type noopEvents struct{}

func (noopEvents) UserLoggedIn(context.Context, *domain.User, string)                     {}
func (noopEvents) UserDeleted(context.Context, *domain.User)                              {}
func (noopEvents) NewsletterSubscribed(context.Context, *domain.Subscriber)               {}
func (noopEvents) NewsletterConfirmed(context.Context, *domain.Subscriber)                {}
func (noopEvents) NewsletterUnsubscribed(context.Context, *domain.Subscriber)             {}
func (noopEvents) BriefGenerated(context.Context, *domain.Article)                        {}
func (noopEvents) BriefDispatched(context.Context, *domain.Article, domain.DispatchResult) {}
