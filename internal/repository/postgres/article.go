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

type articleRepository struct {
	db DB
}

// NewArticleRepository creates a PostgreSQL-backed article repository.
func NewArticleRepository(db DB) repository.ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Insert(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO articles (id, title, body, topic, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(ctx, query, article.ID, article.Title, article.Body, article.Topic, article.CreatedAt); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	query := `SELECT id, title, body, topic, created_at FROM articles WHERE id = $1`

	var a domain.Article
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Title, &a.Body, &a.Topic, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("article not found")
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &a, nil
}

func (r *articleRepository) SetLatest(ctx context.Context, articleID string) error {
	// Single-row marker table. The pointer survives restarts so a dispatch
	// after a crash still knows which brief to send.
	query := `
		INSERT INTO latest_article (id, article_id, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET article_id = EXCLUDED.article_id, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, articleID); err != nil {
		return fmt.Errorf("set latest article: %w", err)
	}
	return nil
}

func (r *articleRepository) GetLatest(ctx context.Context) (*domain.Article, error) {
	query := `
		SELECT a.id, a.title, a.body, a.topic, a.created_at
		FROM latest_article l
		JOIN articles a ON a.id = l.article_id
		WHERE l.id = 1`

	var a domain.Article
	err := r.db.QueryRow(ctx, query).Scan(&a.ID, &a.Title, &a.Body, &a.Topic, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("no brief generated yet")
		}
		return nil, fmt.Errorf("get latest article: %w", err)
	}
	return &a, nil
}
