package http

import (
	"log/slog"
	"net/http"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	"github.com/ynl8015/LinguaLetter-sub000/internal/service"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httputil"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/middleware"
)

type userHandler struct {
	identity *service.IdentityService
	log      *slog.Logger
}

func newUserHandler(identity *service.IdentityService, log *slog.Logger) *userHandler {
	return &userHandler{identity: identity, log: log}
}

type meResponse struct {
	User  *domain.User       `json:"user"`
	Stats *domain.UsageStats `json:"stats,omitempty"`
}

func (h *userHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, stats, err := h.identity.CurrentUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, meResponse{User: user, Stats: stats})
}

func (h *userHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.identity.DeleteAccount(ctx, middleware.UserIDFromContext(ctx), middleware.TokenFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, map[string]bool{"deleted": true})
}
