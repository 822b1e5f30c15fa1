package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-journals/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/ledger"
	"github.com/odyssey-erp/odyssey-journals/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-journals/internal/observability"
	"github.com/odyssey-erp/odyssey-journals/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-journals/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	JournalsHandler *journals.Handler
	PeriodsHandler  *periods.Handler
	LedgerHandler   *ledger.Handler
	AccountsHandler *accounts.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Odyssey defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if params.JournalsHandler != nil {
			r.Route("/journals", params.JournalsHandler.MountRoutes)
		}
		r.Route("/periods", func(r chi.Router) {
			if params.PeriodsHandler != nil {
				params.PeriodsHandler.MountRoutes(r)
			}
			if params.LedgerHandler != nil {
				params.LedgerHandler.MountRoutes(r)
			}
		})
		if params.AccountsHandler != nil {
			r.Route("/accounts", params.AccountsHandler.MountRoutes)
		}
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
