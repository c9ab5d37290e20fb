// Package http wires the chi router for the public API.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/service"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/health"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/middleware"
)

// Dependencies holds everything the router needs.
type Dependencies struct {
	Identity   *service.IdentityService
	Consents   *service.ConsentService
	Newsletter *service.NewsletterService
	Dispatch   *service.DispatchService

	Health      *health.Handler
	FrontendURL string
	CORSOrigins []string
	Log         *slog.Logger
}

// NewRouter builds the full route tree with the shared middleware chain.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.RequestLogging(deps.Log))
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing("lingualetter"))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: deps.CORSOrigins}))

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	validate := sessionValidator(deps.Identity)

	authH := newAuthHandler(deps.Identity, deps.FrontendURL, deps.Log)
	newsH := newNewsletterHandler(deps.Newsletter, deps.Log)
	consentH := newConsentHandler(deps.Consents, deps.Log)
	userH := newUserHandler(deps.Identity, deps.Log)
	adminH := newAdminHandler(deps.Dispatch, deps.Log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/{provider}", authH.Login)
			r.Get("/{provider}/callback", authH.Callback)
			r.With(middleware.OptionalAuth(validate)).Post("/logout", authH.Logout)
		})

		r.Route("/newsletter", func(r chi.Router) {
			r.Post("/subscribe", newsH.Subscribe)
			r.Get("/confirm/{token}", newsH.Confirm)
			r.Post("/unsubscribe/{token}", newsH.UnsubscribeByToken)
			r.Get("/unsubscribe/{token}", newsH.UnsubscribeByToken)
			r.With(middleware.Auth(validate)).Post("/unsubscribe", newsH.UnsubscribeByEmail)
		})

		r.Route("/consents", func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Get("/status", consentH.Status)
			r.Post("/", consentH.Record)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Get("/me", userH.Me)
			r.Delete("/me", userH.DeleteMe)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Post("/generate", adminH.Generate)
			r.Post("/dispatch", adminH.Dispatch)
		})
	})

	return r
}

// sessionValidator bridges the identity service into the auth middleware.
func sessionValidator(identity *service.IdentityService) middleware.TokenValidator {
	return func(ctx context.Context, token string) (*middleware.Claims, error) {
		claims, err := identity.ValidateSession(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Provider: claims.Provider,
			Role:     claims.Role,
		}, nil
	}
}
