package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civic/internal/residents/models"
	"civic/pkg/platform/httputil"
	"civic/pkg/platform/middleware/request"
	"civic/pkg/requestcontext"
)

// Service defines the resident operations exposed over HTTP.
type Service interface {
	Query(ctx context.Context, c models.Criteria) ([]models.Record, error)
	Breakdown(ctx context.Context, c models.Criteria, groupBy string) ([]models.Group, error)
	Brackets() []models.BracketInfo
}

// Handler serves the residents endpoints.
type Handler struct {
	logger    *slog.Logger
	residents Service
}

// New creates a new residents Handler.
func New(residents Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		residents: residents,
	}
}

// Register registers the residents routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/residents", func(r chi.Router) {
		r.Use(request.AllowContentTypes(request.FormContentTypes...))

		r.Get("/query", h.handleQuery)
		r.Post("/query", h.handleQuery)
		r.Get("/breakdown", h.handleBreakdown)
		r.Post("/breakdown", h.handleBreakdown)
		r.Get("/age-brackets", h.handleBrackets)
	})
}

// handleQuery returns every resident matching the submitted criteria.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !httputil.ParseForm(w, r, h.logger) {
		return
	}
	ctx := r.Context()
	criteria := models.CriteriaFromForm(r.Form)

	records, err := h.residents.Query(ctx, criteria)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query residents",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if records == nil {
		records = []models.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, &QueryResponse{Data: records})
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if !httputil.ParseForm(w, r, h.logger) {
		return
	}
	ctx := r.Context()
	criteria := models.CriteriaFromForm(r.Form)

	groups, err := h.residents.Breakdown(ctx, criteria, groupByParam(r.Form))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to compute resident breakdown",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if groups == nil {
		groups = []models.Group{}
	}
	httputil.WriteJSON(w, http.StatusOK, &BreakdownResponse{Data: groups})
}

func (h *Handler) handleBrackets(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &BracketsResponse{Data: h.residents.Brackets()})
}
