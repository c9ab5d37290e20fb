package http

import (
	"log/slog"
	"net/http"

	"github.com/ynl8015/LinguaLetter-sub000/internal/service"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httputil"
)

type adminHandler struct {
	dispatch *service.DispatchService
	log      *slog.Logger
}

func newAdminHandler(dispatch *service.DispatchService, log *slog.Logger) *adminHandler {
	return &adminHandler{dispatch: dispatch, log: log}
}

// Generate triggers brief generation out of band.
func (h *adminHandler) Generate(w http.ResponseWriter, r *http.Request) {
	article, err := h.dispatch.GenerateBrief(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, article)
}

// Dispatch triggers the newsletter fan-out out of band.
func (h *adminHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	result, err := h.dispatch.DispatchBrief(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteData(w, result)
}
