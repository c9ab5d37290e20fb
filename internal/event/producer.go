// Package event publishes domain events to Kafka. Publishing is best effort:
// a broker outage is logged and never fails the request that caused the
// event.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/kafka"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/logger"
)

// Topics this service publishes to.
const (
	TopicUserLoggedIn           = "lingualetter.user.logged_in"
	TopicUserDeleted            = "lingualetter.user.deleted"
	TopicNewsletterSubscribed   = "lingualetter.newsletter.subscribed"
	TopicNewsletterConfirmed    = "lingualetter.newsletter.confirmed"
	TopicNewsletterUnsubscribed = "lingualetter.newsletter.unsubscribed"
	TopicBriefGenerated         = "lingualetter.brief.generated"
	TopicBriefDispatched        = "lingualetter.brief.dispatched"
)

const source = "lingualetter-api"

// UserLoggedInPayload is the body of a user.logged_in event.
type UserLoggedInPayload struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Provider string    `json:"provider"`
	Role     string    `json:"role"`
	LoginAt  time.Time `json:"login_at"`
}

// UserDeletedPayload is the body of a user.deleted event.
type UserDeletedPayload struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	DeletedAt time.Time `json:"deleted_at"`
}

// SubscriptionPayload is the body of the newsletter lifecycle events.
type SubscriptionPayload struct {
	SubscriberID string    `json:"subscriber_id"`
	Email        string    `json:"email"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BriefGeneratedPayload is the body of a brief.generated event.
type BriefGeneratedPayload struct {
	ArticleID   string    `json:"article_id"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BriefDispatchedPayload is the body of a brief.dispatched event.
type BriefDispatchedPayload struct {
	ArticleID    string    `json:"article_id"`
	SuccessCount int       `json:"success_count"`
	TotalCount   int       `json:"total_count"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// Publisher sends domain events. A nil *Producer is a valid no-op publisher.
type Publisher interface {
	UserLoggedIn(ctx context.Context, user *domain.User, provider string)
	UserDeleted(ctx context.Context, user *domain.User)
	NewsletterSubscribed(ctx context.Context, sub *domain.Subscriber)
	NewsletterConfirmed(ctx context.Context, sub *domain.Subscriber)
	NewsletterUnsubscribed(ctx context.Context, sub *domain.Subscriber)
	BriefGenerated(ctx context.Context, article *domain.Article)
	BriefDispatched(ctx context.Context, article *domain.Article, result domain.DispatchResult)
}

// Producer publishes events through the shared Kafka producer.
type Producer struct {
	producer *kafka.Producer
	log      *slog.Logger
}

// NewProducer wraps the Kafka producer. Pass nil to disable publishing.
func NewProducer(producer *kafka.Producer, log *slog.Logger) *Producer {
	return &Producer{producer: producer, log: log}
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, payload any) {
	if p == nil || p.producer == nil {
		return
	}

	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, payload)
	if err != nil {
		p.log.ErrorContext(ctx, "build event", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt = evt.WithCorrelationID(cid)
	}

	if err := p.producer.Publish(ctx, topic, evt); err != nil {
		p.log.ErrorContext(ctx, "publish event",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
	}
}

func (p *Producer) UserLoggedIn(ctx context.Context, user *domain.User, provider string) {
	p.publish(ctx, TopicUserLoggedIn, "user.logged_in", user.ID, "user", UserLoggedInPayload{
		UserID:   user.ID,
		Email:    user.Email,
		Provider: provider,
		Role:     user.Role,
		LoginAt:  user.LastLoginAt,
	})
}

func (p *Producer) UserDeleted(ctx context.Context, user *domain.User) {
	p.publish(ctx, TopicUserDeleted, "user.deleted", user.ID, "user", UserDeletedPayload{
		UserID:    user.ID,
		Email:     user.Email,
		DeletedAt: time.Now().UTC(),
	})
}

func (p *Producer) NewsletterSubscribed(ctx context.Context, sub *domain.Subscriber) {
	p.publish(ctx, TopicNewsletterSubscribed, "newsletter.subscribed", sub.ID, "subscriber", SubscriptionPayload{
		SubscriberID: sub.ID,
		Email:        sub.Email,
		OccurredAt:   time.Now().UTC(),
	})
}

func (p *Producer) NewsletterConfirmed(ctx context.Context, sub *domain.Subscriber) {
	p.publish(ctx, TopicNewsletterConfirmed, "newsletter.confirmed", sub.ID, "subscriber", SubscriptionPayload{
		SubscriberID: sub.ID,
		Email:        sub.Email,
		OccurredAt:   time.Now().UTC(),
	})
}

func (p *Producer) NewsletterUnsubscribed(ctx context.Context, sub *domain.Subscriber) {
	p.publish(ctx, TopicNewsletterUnsubscribed, "newsletter.unsubscribed", sub.ID, "subscriber", SubscriptionPayload{
		SubscriberID: sub.ID,
		Email:        sub.Email,
		OccurredAt:   time.Now().UTC(),
	})
}

func (p *Producer) BriefGenerated(ctx context.Context, article *domain.Article) {
	p.publish(ctx, TopicBriefGenerated, "brief.generated", article.ID, "article", BriefGeneratedPayload{
		ArticleID:   article.ID,
		Title:       article.Title,
		GeneratedAt: article.CreatedAt,
	})
}

func (p *Producer) BriefDispatched(ctx context.Context, article *domain.Article, result domain.DispatchResult) {
	p.publish(ctx, TopicBriefDispatched, "brief.dispatched", article.ID, "article", BriefDispatchedPayload{
		ArticleID:    article.ID,
		SuccessCount: result.SuccessCount,
		TotalCount:   result.TotalCount,
		DispatchedAt: time.Now().UTC(),
	})
}
