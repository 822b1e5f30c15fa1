package journals

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-journals/internal/journal"
	"github.com/odyssey-erp/odyssey-journals/internal/money"
	"github.com/odyssey-erp/odyssey-journals/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-journals/internal/shared"
)

// IdempotencyHeader carries the client key that deduplicates creates.
const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{logger: logger, service: service, validator: v}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	filter := ListFilter{
		Status:   journal.Status(q.Get("status")),
		PeriodID: q.Get("periodId"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("perPage"))
	result, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req CreateRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.service.Create(r.Context(), actor, req.Input(), strings.TrimSpace(r.Header.Get(IdempotencyHeader)))
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/journals/"+entry.ID.String())
	httpx.JSON(w, http.StatusCreated, entry)
}

// Preview never persists. It answers 200 with the balance and any failures
// so a form can render running totals while the user types.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(r); !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req CreateRequest
	if !h.decode(w, r, &req) {
		return
	}
	bal, err := h.service.Preview(r.Context(), req.Input())
	resp := PreviewResponse{BalanceResult: bal, Valid: err == nil && bal.Balanced}
	if err != nil {
		resp.Errors = fieldProblems(err)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.service.Update(r.Context(), actor, id, req.ExpectedVersion, req.toInput())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	version, ok := versionParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), actor, id, version); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// versionParam reads the optional ?version= guard. Absent means 0, which
// skips the optimistic check.
func versionParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("version")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "version must be a non-negative integer")
		return 0, false
	}
	return v, true
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req AddLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.service.AddLine(r.Context(), actor, id, req.ExpectedVersion, req.Line.toLine())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	lineNumber, err := strconv.Atoi(chi.URLParam(r, "lineNumber"))
	if err != nil || lineNumber < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "line number must be a positive integer")
		return
	}
	version, ok := versionParam(w, r)
	if !ok {
		return
	}
	entry, err := h.service.RemoveLine(r.Context(), actor, id, version, lineNumber)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req PostRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.service.Post(r.Context(), actor, id, req.ExpectedVersion)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("journal posted",
		slog.String("org_id", actor.OrgID),
		slog.String("entry_id", entry.ID.String()),
		slog.String("number", entry.JournalNumber))
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req VoidRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.service.Void(r.Context(), actor, id, req.ExpectedVersion, req.Reason)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("journal voided",
		slog.String("org_id", actor.OrgID),
		slog.String("entry_id", entry.ID.String()))
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req ReverseRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.service.Reverse(r.Context(), actor, id, req.toInput())
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/journals/"+entry.ID.String())
	httpx.JSON(w, http.StatusCreated, entry)
}

func actorFrom(r *http.Request) (journal.Actor, bool) {
	p, ok := internalShared.PrincipalFromContext(r.Context())
	if !ok {
		return journal.Actor{}, false
	}
	return journal.Actor{OrgID: p.OrgID, UserID: p.UserID}, true
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (journal.Actor, uuid.UUID, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return journal.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.ErrJournalNotFound.Error())
		return journal.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

// decode reads and shape-checks a request body. It writes the problem
// response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(w, r, target); err != nil {
		if errors.Is(err, money.ErrInvalidAmount) {
			httpx.WriteProblem(w, httpx.ProblemDetail{
				Title:  "Validation Failed",
				Status: http.StatusUnprocessableEntity,
				Detail: err.Error(),
				Errors: []httpx.FieldProblem{{Code: "invalid_amount", Detail: err.Error()}},
			})
			return false
		}
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		problem := httpx.ProblemDetail{Title: "Validation Failed", Status: http.StatusUnprocessableEntity, Detail: "request failed validation"}
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problem.Errors = append(problem.Errors, httpx.FieldProblem{
					Field:  fe.Field(),
					Code:   "invalid_field",
					Detail: fe.Tag(),
				})
			}
		}
		httpx.WriteProblem(w, problem)
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	problem, ok := problemFor(err)
	if !ok {
		h.logger.Error("journal request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.WriteProblem(w, problem)
}
