package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"companygraph/internal/companygraph"
	dErrors "companygraph/pkg/domain-errors"
	"companygraph/pkg/platform/httputil"
	"companygraph/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service resolves a query into a company graph.
type Service interface {
	Resolve(ctx context.Context, query string, searchBy companygraph.SearchBy) (*companygraph.Result, error)
}

// Handler serves company graph lookups.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the company routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/company", h.handleGetCompany)
}

// handleGetCompany resolves ?query= in the ?search_by= mode, which defaults
// to name.
func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	query := r.URL.Query().Get("query")
	searchBy := companygraph.SearchBy(r.URL.Query().Get("search_by"))
	if searchBy == "" {
		searchBy = companygraph.SearchByName
	}

	result, err := h.service.Resolve(ctx, query, searchBy)
	if err != nil {
		h.writeResolveError(ctx, w, requestID, query, searchBy, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, NewCompanyResponse(result))
}

func (h *Handler) writeResolveError(ctx context.Context, w http.ResponseWriter, requestID, query string, searchBy companygraph.SearchBy, err error) {
	switch {
	case errors.Is(err, companygraph.ErrNotFound), errors.Is(err, companygraph.ErrInvalidQuery):
		h.logger.InfoContext(ctx, "company lookup rejected",
			"request_id", requestID,
			"query", query,
			"search_by", searchBy,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
	case errors.Is(err, companygraph.ErrDeadline):
		h.logger.WarnContext(ctx, "company lookup timed out",
			"request_id", requestID,
			"query", query,
			"search_by", searchBy,
		)
		httputil.WriteError(w, err)
	default:
		h.logger.ErrorContext(ctx, "company lookup failed",
			"request_id", requestID,
			"query", query,
			"search_by", searchBy,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve company"))
	}
}
