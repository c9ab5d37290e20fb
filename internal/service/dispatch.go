package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/event"
	"github.com/ynl8015/LinguaLetter-sub000/internal/generator"
	"github.com/ynl8015/LinguaLetter-sub000/internal/mailer"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

// DispatchService runs the two daily pipeline steps: generate the brief,
// then fan it out to active subscribers.
type DispatchService struct {
	articles    repository.ArticleRepository
	newsletter  *NewsletterService
	gen         generator.Generator
	mail        mailer.Mailer
	events      event.Publisher
	baseURL     string
	concurrency int
	log         *slog.Logger
}

func NewDispatchService(
	articles repository.ArticleRepository,
	newsletter *NewsletterService,
	gen generator.Generator,
	mail mailer.Mailer,
	events event.Publisher,
	baseURL string,
	concurrency int,
	log *slog.Logger,
) *DispatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DispatchService{
		articles:    articles,
		newsletter:  newsletter,
		gen:         gen,
		mail:        mail,
		events:      events,
		baseURL:     baseURL,
		concurrency: concurrency,
		log:         log,
	}
}

// GenerateBrief produces today's brief and moves the latest pointer to it.
// On failure the prior pointer is kept, so dispatch falls back to the last
// good brief.
func (s *DispatchService) GenerateBrief(ctx context.Context) (*domain.Article, error) {
	article, err := s.gen.Generate(ctx)
	if err != nil {
		briefGenerationTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("generate brief: %w", err)
	}

	if err := s.articles.Insert(ctx, article); err != nil {
		briefGenerationTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	if err := s.articles.SetLatest(ctx, article.ID); err != nil {
		briefGenerationTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	briefGenerationTotal.WithLabelValues("success").Inc()
	s.events.BriefGenerated(ctx, article)
	s.log.InfoContext(ctx, "brief generated",
		slog.String("article_id", article.ID),
		slog.String("title", article.Title),
	)
	return article, nil
}

// DispatchBrief sends the latest brief to every active subscriber. Sends
// run with bounded concurrency and settle independently; one recipient's
// failure never aborts the rest. TotalCount is the snapshot size at batch
// start.
func (s *DispatchService) DispatchBrief(ctx context.Context) (domain.DispatchResult, error) {
	article, err := s.articles.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.log.WarnContext(ctx, "dispatch skipped, no brief to send")
			return domain.DispatchResult{}, nil
		}
		return domain.DispatchResult{}, err
	}

	subs, err := s.newsletter.ActiveSubscribers(ctx)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	result := domain.DispatchResult{TotalCount: len(subs)}
	if len(subs) == 0 {
		s.log.InfoContext(ctx, "dispatch skipped, no active subscribers")
		return result, nil
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sem     = make(chan struct{}, s.concurrency)
		success int
	)
	for _, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub *domain.Subscriber) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.sendBrief(ctx, article, sub); err != nil {
				dispatchSendsTotal.WithLabelValues("failure").Inc()
				s.log.ErrorContext(ctx, "brief send failed",
					slog.String("subscriber_id", sub.ID),
					slog.Any("error", err),
				)
				return
			}
			dispatchSendsTotal.WithLabelValues("success").Inc()
			mu.Lock()
			success++
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	result.SuccessCount = success
	s.events.BriefDispatched(ctx, article, result)
	s.log.InfoContext(ctx, "brief dispatched",
		slog.String("article_id", article.ID),
		slog.Int("success_count", result.SuccessCount),
		slog.Int("total_count", result.TotalCount),
	)
	return result, nil
}

func (s *DispatchService) sendBrief(ctx context.Context, article *domain.Article, sub *domain.Subscriber) error {
	unsubURL := fmt.Sprintf("%s/api/v1/newsletter/unsubscribe/%s", s.baseURL, sub.UnsubscribeToken)
	msg := mailer.Message{
		To:      sub.Email,
		Subject: article.Title,
		Text:    fmt.Sprintf("%s\n\nUnsubscribe: %s", article.Body, unsubURL),
		HTML: fmt.Sprintf(`<h1>%s</h1><div>%s</div><p><a href="%s">Unsubscribe</a></p>`,
			article.Title, article.Body, unsubURL),
	}
	return s.mail.Send(ctx, msg)
}
