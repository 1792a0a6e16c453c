package companygraph

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"companygraph/internal/companygraph/metrics"
	"companygraph/internal/companygraph/ports"
	"companygraph/internal/registry/models"
)

// SearchBy selects how a query is interpreted.
type SearchBy string

const (
	SearchByName        SearchBy = "name"
	SearchByID          SearchBy = "id"
	SearchByResponsible SearchBy = "responsible_name"
)

// Result is a resolved company graph. Companies lists every company touched,
// MainCompany included, in visit order.
type Result struct {
	MainCompany *models.Company
	Companies   []*models.Company
	SessionID   string
	Stats       Stats
}

// Resolver turns a query into a connected set of companies.
type Resolver struct {
	registry ports.RegistryPort
	engine   *Engine
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTimeout bounds a whole resolution. Zero disables the deadline.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithResolverMetrics records outcomes, latency and result size on m.
func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithResolverLogger sets the logger used for resolution outcomes.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver returns a Resolver that seeds engine from registry.
func NewResolver(registry ports.RegistryPort, engine *Engine, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: registry,
		engine:   engine,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up the seed companies for query and expands them in a fresh
// session. Modes other than responsible_name treat an all-digit query as a
// Business_Accounting_NO.
func (r *Resolver) Resolve(ctx context.Context, query string, searchBy SearchBy) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if searchBy == SearchByID && !isDigits(query) {
		return nil, ErrInvalidQuery
	}

	mode := SearchByName
	switch {
	case searchBy == SearchByResponsible:
		mode = SearchByResponsible
	case searchBy == SearchByID || isDigits(query):
		mode = SearchByID
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	session := NewSession()
	ctx, span := r.tracer.Start(ctx, "companygraph.resolve",
		trace.WithAttributes(
			attribute.String("session.id", session.ID),
			attribute.String("search_by", string(mode)),
		),
	)
	defer span.End()

	start := time.Now()
	r.logger.InfoContext(ctx, "resolving company graph",
		"session_id", session.ID,
		"query", query,
		"search_by", mode,
	)

	var (
		main *models.Company
		err  error
	)
	switch mode {
	case SearchByResponsible:
		main, err = r.resolveByResponsible(ctx, session, query)
	case SearchByID:
		main, err = r.resolveSeed(ctx, session, "by_id", query, r.registry.LookupByID)
	default:
		main, err = r.resolveSeed(ctx, session, "by_name", query, r.registry.LookupByName)
	}
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.IncrementOutcome(string(mode), outcomeFor(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.InfoContext(ctx, "company graph resolution failed",
			"session_id", session.ID,
			"search_by", mode,
			"error", err,
			"elapsed_ms", elapsed.Milliseconds(),
		)
		return nil, err
	}

	companies := session.Companies()
	stats := session.Stats()
	stats.ElapsedMillis = elapsed.Milliseconds()

	r.metrics.IncrementOutcome(string(mode), "found")
	r.metrics.ObserveResolve(string(mode), elapsed, len(companies))
	span.SetAttributes(attribute.Int("companies", len(companies)))
	r.logger.InfoContext(ctx, "company graph resolved",
		"session_id", session.ID,
		"search_by", mode,
		"companies", len(companies),
		"lookups", stats.Lookups,
		"lookup_failures", stats.LookupFailures,
		"elapsed_ms", stats.ElapsedMillis,
	)

	return &Result{
		MainCompany: main,
		Companies:   companies,
		SessionID:   session.ID,
		Stats:       stats,
	}, nil
}

// resolveByResponsible expands every company of a responsible person. The
// first company expanded is the main company.
func (r *Resolver) resolveByResponsible(ctx context.Context, s *Session, query string) (*models.Company, error) {
	seeds, err := r.seedLookup(ctx, s, "by_responsible", NormalizeResponsibleName(query), r.registry.LookupByResponsible)
	if err != nil {
		return nil, err
	}
	var main *models.Company
	for _, seed := range seeds {
		processed, err := r.engine.Process(ctx, s, seed)
		if err != nil {
			return nil, err
		}
		if main == nil {
			main = processed
		}
	}
	if main == nil {
		return nil, ErrNotFound
	}
	return main, nil
}

// resolveSeed expands the first match of lookup, then the companies sharing
// its responsible person. Failing to find siblings still returns the main
// company.
func (r *Resolver) resolveSeed(
	ctx context.Context,
	s *Session,
	operation, query string,
	lookup func(context.Context, string) ([]*models.Company, error),
) (*models.Company, error) {
	seeds, err := r.seedLookup(ctx, s, operation, query, lookup)
	if err != nil {
		return nil, err
	}

	var main *models.Company
	for _, seed := range seeds {
		if seed != nil && seed.BusinessAccountingNO != "" {
			main = seed
			break
		}
	}
	if main == nil {
		return nil, ErrNotFound
	}
	if _, err := r.engine.Process(ctx, s, main); err != nil {
		return nil, err
	}

	responsible := NormalizeResponsibleName(main.ResponsibleName)
	if strings.TrimSpace(responsible) == "" {
		return main, nil
	}
	siblings, err := r.registry.LookupByResponsible(ctx, responsible)
	if !r.engine.recordLookup(ctx, s, "by_responsible", responsible, err) {
		if ctx.Err() != nil {
			return nil, ErrDeadline
		}
		return main, nil
	}
	for _, sibling := range siblings {
		if _, err := r.engine.Process(ctx, s, sibling); err != nil {
			return nil, err
		}
	}
	return main, nil
}

// seedLookup runs the lookup that starts a resolution. A failed seed lookup
// is reported as not found, except when the deadline expired.
func (r *Resolver) seedLookup(
	ctx context.Context,
	s *Session,
	operation, arg string,
	lookup func(context.Context, string) ([]*models.Company, error),
) ([]*models.Company, error) {
	seeds, err := lookup(ctx, arg)
	if !r.engine.recordLookup(ctx, s, operation, arg, err) {
		if ctx.Err() != nil {
			return nil, ErrDeadline
		}
		return nil, ErrNotFound
	}
	if len(seeds) == 0 {
		return nil, ErrNotFound
	}
	return seeds, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDeadline):
		return "deadline"
	default:
		return "error"
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
