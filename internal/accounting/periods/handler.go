package periods

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-journals/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
	r.Post("/{id}/status", h.SetStatus)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := internalShared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	period, err := h.service.Get(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := internalShared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var in StatusInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	period, err := h.service.SetStatus(r.Context(), p, chi.URLParam(r, "id"), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("period status changed",
		slog.String("org_id", p.OrgID),
		slog.String("period_id", period.ID),
		slog.String("status", string(period.Status)))
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrPeriodNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, internalShared.ErrInvalidPeriodTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Period Transition", err.Error())
	default:
		h.logger.Error("period request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
