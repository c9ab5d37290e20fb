package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
)

type staticGenerator struct{}

// NewStaticGenerator returns a Generator that produces a placeholder brief.
// Used in local development when no generator URL is configured.
func NewStaticGenerator() Generator {
	return staticGenerator{}
}

func (staticGenerator) Generate(ctx context.Context) (*domain.Article, error) {
	now := time.Now().UTC()
	return &domain.Article{
		ID:        uuid.New().String(),
		Title:     fmt.Sprintf("Daily brief for %s", now.Format("2006-01-02")),
		Body:      "Placeholder brief body. Configure GENERATOR_URL to produce real content.",
		CreatedAt: now,
	}, nil
}
