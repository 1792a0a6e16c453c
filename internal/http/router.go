package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"companygraph/internal/platform/middleware"
	dErrors "companygraph/pkg/domain-errors"
	"companygraph/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// RouterDeps holds everything the public router mounts. Health and Metrics
// are optional.
type RouterDeps struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Health         HealthChecker
	Metrics        http.Handler
	Modules        []Registrar
}

// NewRouter wires the shared middleware stack, the operational endpoints and
// every module's routes. CORS applies to /api only.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(deps.Logger))
	r.Use(middleware.CORS("/api/", deps.AllowedOrigins))

	r.Get("/healthz", healthHandler(deps.Health))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	for _, m := range deps.Modules {
		m.Register(r)
	}
	return r
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Health(r.Context()); err != nil {
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "cache unavailable"))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
