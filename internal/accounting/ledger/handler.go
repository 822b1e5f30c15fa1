package ledger

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-journals/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-journals/internal/shared"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes mounts under the periods prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/trial-balance", h.TrialBalance)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}
