package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httpclient"
)

type httpGenerator struct {
	client  *httpclient.BreakerClient
	baseURL string
}

// NewHTTPGenerator creates a Generator that calls the external content
// service.
func NewHTTPGenerator(client *httpclient.BreakerClient, baseURL string) Generator {
	return &httpGenerator{client: client, baseURL: baseURL}
}

func (g *httpGenerator) Generate(ctx context.Context) (*domain.Article, error) {
	resp, err := g.client.Post(ctx, g.baseURL+"/generate", "application/json", nil)
	if err != nil {
		return nil, apperrors.Upstream("generator", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream("generator", fmt.Errorf("generate returned %d", resp.StatusCode))
	}

	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Upstream("generator", fmt.Errorf("decode brief: %w", err))
	}
	if payload.Title == "" || payload.Body == "" {
		return nil, apperrors.Upstream("generator", fmt.Errorf("brief missing title or body"))
	}

	return &domain.Article{
		ID:        uuid.New().String(),
		Title:     payload.Title,
		Body:      payload.Body,
		Topic:     payload.Topic,
		CreatedAt: time.Now().UTC(),
	}, nil
}
