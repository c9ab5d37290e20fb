package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ynl8015/LinguaLetter-sub000/internal/service"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httputil"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/middleware"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/validator"
)

type newsletterHandler struct {
	newsletter *service.NewsletterService
	log        *slog.Logger
}

func newNewsletterHandler(newsletter *service.NewsletterService, log *slog.Logger) *newsletterHandler {
	return &newsletterHandler{newsletter: newsletter, log: log}
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *newsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sub, err := h.newsletter.Subscribe(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{
		"message": "confirmation mail sent",
		"email":   sub.Email,
	}})
}

func (h *newsletterHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sub, err := h.newsletter.Confirm(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, map[string]string{
		"message": "subscription confirmed",
		"email":   sub.Email,
	})
}

func (h *newsletterHandler) UnsubscribeByToken(w http.ResponseWriter, r *http.Request) {
	if err := h.newsletter.UnsubscribeByToken(r.Context(), chi.URLParam(r, "token")); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, map[string]string{"message": "unsubscribed"})
}

type unsubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UnsubscribeByEmail is the authenticated variant; the bearer identity must
// own the address.
func (h *newsletterHandler) UnsubscribeByEmail(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	requester := middleware.EmailFromContext(r.Context())
	if err := h.newsletter.UnsubscribeByEmail(r.Context(), req.Email, requester); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, map[string]string{"message": "unsubscribed"})
}
