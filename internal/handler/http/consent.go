package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ynl8015/LinguaLetter-sub000/internal/service"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httputil"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/middleware"
)

type consentHandler struct {
	consents *service.ConsentService
	log      *slog.Logger
}

func newConsentHandler(consents *service.ConsentService, log *slog.Logger) *consentHandler {
	return &consentHandler{consents: consents, log: log}
}

func (h *consentHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.consents.Status(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, status)
}

func (h *consentHandler) Record(w http.ResponseWriter, r *http.Request) {
	// Booleans decode directly; the service enforces which must be true.
	var input service.ConsentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.log)
		return
	}

	record, err := h.consents.Record(r.Context(), middleware.UserIDFromContext(r.Context()), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: record})
}
