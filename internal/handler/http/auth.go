package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ynl8015/LinguaLetter-sub000/internal/service"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httputil"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/middleware"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/validator"
)

type authHandler struct {
	identity    *service.IdentityService
	frontendURL string
	log         *slog.Logger
}

func newAuthHandler(identity *service.IdentityService, frontendURL string, log *slog.Logger) *authHandler {
	return &authHandler{identity: identity, frontendURL: frontendURL, log: log}
}

type loginRequest struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirect_uri"`
}

// Login exchanges an authorization code server side and returns the session
// token plus consent status.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.identity.LoginWithCode(r.Context(), chi.URLParam(r, "provider"), req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, result)
}

// Callback handles the provider redirect for browser flows: it finishes the
// login and sends the user back to the frontend with the token in the query
// string, or with an error parameter on failure.
func (h *authHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	code := r.URL.Query().Get("code")

	target, err := url.Parse(h.frontendURL + "/auth/callback")
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	q := target.Query()
	result, loginErr := h.identity.LoginWithCode(r.Context(), provider, code)
	if loginErr != nil {
		h.log.WarnContext(r.Context(), "oauth callback failed",
			slog.String("provider", provider),
			slog.Any("error", loginErr),
		)
		q.Set("error", "login_failed")
	} else {
		q.Set("token", result.Token)
		q.Set("consent_required", strconv.FormatBool(result.Consent.Required))
	}
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// Logout revokes the presented token when there is one. It always reports
// success; an already dead or absent token changes nothing for the client.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		if raw, ok := middleware.BearerToken(r); ok {
			token = raw
		}
	}

	if err := h.identity.Logout(r.Context(), token); err != nil {
		h.log.ErrorContext(r.Context(), "logout revocation failed", slog.Any("error", err))
	}
	httputil.WriteData(w, map[string]bool{"success": true})
}
