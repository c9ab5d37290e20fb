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

type subscriberRepository struct {
	db DB
}

// NewSubscriberRepository creates a PostgreSQL-backed subscriber repository.
func NewSubscriberRepository(db DB) repository.SubscriberRepository {
	return &subscriberRepository{db: db}
}

const subscriberColumns = `id, email, confirm_token, unsubscribe_token, is_active, subscribed_at, confirmed_at`

func scanSubscriber(row pgx.Row) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.ConfirmToken, &s.UnsubscribeToken, &s.IsActive, &s.SubscribedAt, &s.ConfirmedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriberRepository) Insert(ctx context.Context, sub *domain.Subscriber) error {
	query := `
		INSERT INTO subscribers (id, email, confirm_token, unsubscribe_token, is_active, subscribed_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		sub.ID, sub.Email, sub.ConfirmToken, sub.UnsubscribeToken,
		sub.IsActive, sub.SubscribedAt, sub.ConfirmedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("subscriber already exists")
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *subscriberRepository) Update(ctx context.Context, sub *domain.Subscriber) error {
	query := `
		UPDATE subscribers
		SET confirm_token = $2, unsubscribe_token = $3, is_active = $4, subscribed_at = $5, confirmed_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		sub.ID, sub.ConfirmToken, sub.UnsubscribeToken,
		sub.IsActive, sub.SubscribedAt, sub.ConfirmedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("subscriber token collision")
		}
		return fmt.Errorf("update subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("subscriber not found")
	}
	return nil
}

func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	return r.getBy(ctx, "email", email)
}

func (r *subscriberRepository) GetByConfirmToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	return r.getBy(ctx, "confirm_token", token)
}

func (r *subscriberRepository) GetByUnsubscribeToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	return r.getBy(ctx, "unsubscribe_token", token)
}

func (r *subscriberRepository) getBy(ctx context.Context, column, value string) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE ` + column + ` = $1`

	sub, err := scanSubscriber(r.db.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("subscriber not found")
		}
		return nil, fmt.Errorf("get subscriber by %s: %w", column, err)
	}
	return sub, nil
}

func (r *subscriberRepository) ListActive(ctx context.Context) ([]*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE is_active = TRUE ORDER BY subscribed_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, nil
}
