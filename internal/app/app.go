// Package app wires configuration, infrastructure, services and the HTTP
// server into one runnable unit.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ynl8015/LinguaLetter-sub000/internal/auth"
	"github.com/ynl8015/LinguaLetter-sub000/internal/config"
	"github.com/ynl8015/LinguaLetter-sub000/internal/consent"
	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/event"
	"github.com/ynl8015/LinguaLetter-sub000/internal/generator"
	httphandler "github.com/ynl8015/LinguaLetter-sub000/internal/handler/http"
	"github.com/ynl8015/LinguaLetter-sub000/internal/mailer"
	"github.com/ynl8015/LinguaLetter-sub000/internal/oauth"
	"github.com/ynl8015/LinguaLetter-sub000/internal/repository/postgres"
	"github.com/ynl8015/LinguaLetter-sub000/internal/scheduler"
	"github.com/ynl8015/LinguaLetter-sub000/internal/service"
	"github.com/ynl8015/LinguaLetter-sub000/migrations"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/database"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/health"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httpclient"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/kafka"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/tracing"
)

// App is the assembled service.
type App struct {
	cfg *config.Config
	log *slog.Logger

	pool           *pgxpool.Pool
	redisClient    *redis.Client
	kafkaProducer  *kafka.Producer
	tracerShutdown func(context.Context) error

	sched  *scheduler.Scheduler
	server *http.Server
}

// NewApp builds the full dependency graph. It connects to PostgreSQL (with
// retries), runs migrations, and opens the optional Redis and Kafka
// connections.
func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    "lingualetter",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL
	pgCfg.MaxConns = cfg.DBMaxConns
	pgCfg.MinConns = cfg.DBMinConns

	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	var kafkaProducer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaBrokers[0] != "" {
		kafkaProducer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
	}
	events := event.NewProducer(kafkaProducer, log)

	userRepo := postgres.NewUserRepository(pool)
	consentRepo := postgres.NewConsentRepository(pool)
	revocationRepo := postgres.NewRevocationRepository(pool)
	subscriberRepo := postgres.NewSubscriberRepository(pool)
	articleRepo := postgres.NewArticleRepository(pool)

	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionExpiryDuration())
	admins := auth.NewAllowListPolicy(cfg.AdminEmails)
	versions := consent.Versions{
		Terms:      cfg.TermsVersion,
		Privacy:    cfg.PrivacyVersion,
		Newsletter: cfg.NewsletterVersion,
	}

	providers := map[string]oauth.Client{
		domain.ProviderGoogle: oauth.NewGoogleClient(
			httpclient.NewBreakerClient(httpclient.New(httpclient.DefaultConfig()), httpclient.DefaultBreakerConfig("oauth-google"), log),
			cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.PublicBaseURL+"/api/v1/auth/google/callback",
		),
		domain.ProviderKakao: oauth.NewKakaoClient(
			httpclient.NewBreakerClient(httpclient.New(httpclient.DefaultConfig()), httpclient.DefaultBreakerConfig("oauth-kakao"), log),
			cfg.KakaoClientID, cfg.KakaoClientSecret,
			cfg.PublicBaseURL+"/api/v1/auth/kakao/callback",
		),
	}

	var mail mailer.Mailer
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	} else {
		log.Warn("SENDGRID_API_KEY not set, outbound mail disabled")
		mail = mailer.NewLogMailer(log)
	}

	var gen generator.Generator
	if cfg.GeneratorURL != "" {
		gen = generator.NewHTTPGenerator(
			httpclient.NewBreakerClient(httpclient.New(httpclient.DefaultConfig()), httpclient.DefaultBreakerConfig("generator"), log),
			cfg.GeneratorURL,
		)
	} else {
		log.Warn("GENERATOR_URL not set, using placeholder briefs")
		gen = generator.NewStaticGenerator()
	}

	consents := service.NewConsentService(consentRepo, versions, log)
	revocations := service.NewRevocationService(revocationRepo, sessions, redisClient, log)
	identity := service.NewIdentityService(userRepo, consents, revocations, providers, sessions, admins, events, log)
	newsletter := service.NewNewsletterService(subscriberRepo, mail, events, cfg.PublicBaseURL, log)
	dispatch := service.NewDispatchService(articleRepo, newsletter, gen, mail, events, cfg.PublicBaseURL, cfg.DispatchConcurrency, log)

	sched := scheduler.New(log,
		scheduler.Job{
			Name: "generate-brief",
			At:   cfg.GenerateClock(),
			Run: func(ctx context.Context) {
				if _, err := dispatch.GenerateBrief(ctx); err != nil {
					log.Error("scheduled brief generation failed", slog.Any("error", err))
				}
			},
		},
		scheduler.Job{
			Name: "dispatch-brief",
			At:   cfg.DispatchClock(),
			Run: func(ctx context.Context) {
				if _, err := dispatch.DispatchBrief(ctx); err != nil {
					log.Error("scheduled dispatch failed", slog.Any("error", err))
				}
			},
		},
	)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := httphandler.NewRouter(httphandler.Dependencies{
		Identity:    identity,
		Consents:    consents,
		Newsletter:  newsletter,
		Dispatch:    dispatch,
		Health:      healthHandler,
		FrontendURL: cfg.FrontendURL,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return &App{
		cfg:            cfg,
		log:            log,
		pool:           pool,
		redisClient:    redisClient,
		kafkaProducer:  kafkaProducer,
		tracerShutdown: tracerShutdown,
		sched:          sched,
		server:         server,
	}, nil
}

// Run starts the scheduler and serves HTTP until the server is shut down.
func (a *App) Run(ctx context.Context) error {
	a.sched.Start(ctx)

	a.log.Info("http server listening",
		slog.String("addr", a.server.Addr),
		slog.String("environment", a.cfg.Environment),
	)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, stops the scheduler, and closes the
// outbound connections in reverse dependency order.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down")

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutdown http server: %w", err)
	}

	a.sched.Stop()

	if err := a.tracerShutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("shutdown tracer: %w", err)
	}
	if a.kafkaProducer != nil {
		if err := a.kafkaProducer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close kafka producer: %w", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
	}
	a.pool.Close()

	a.log.Info("shutdown complete")
	return firstErr
}
