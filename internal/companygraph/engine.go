package companygraph

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"companygraph/internal/companygraph/metrics"
	"companygraph/internal/companygraph/ports"
	"companygraph/internal/registry/models"
	"companygraph/internal/registry/providers"
)

const tracerName = "companygraph/internal/companygraph"

const defaultJuristicFanOut = 4

// Engine expands companies into their juristic person relations. Lookup
// failures never abort a traversal; they leave the affected data empty.
type Engine struct {
	registry      ports.RegistryPort
	fanOut        int
	cacheNegative bool
	metrics       *metrics.Metrics
	logger        *slog.Logger
	tracer        trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithJuristicFanOut bounds concurrent juristic person lookups per company.
func WithJuristicFanOut(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.fanOut = n
		}
	}
}

// WithNegativeCaching makes empty juristic lookups count as cached answers
// for the rest of the session.
func WithNegativeCaching(enabled bool) EngineOption {
	return func(e *Engine) {
		e.cacheNegative = enabled
	}
}

// WithEngineMetrics records cache hits and lookup failures on m.
func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithEngineLogger sets the logger used for expansion and failed lookups.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine returns an Engine reading from registry.
func NewEngine(registry ports.RegistryPort, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		fanOut:   defaultJuristicFanOut,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// candidate is a juristic person company waiting to be expanded, together
// with the disclosure line it will be attached to.
type candidate struct {
	company *models.Company
	holder  *models.Shareholder
}

// Process expands company and everything reachable from it through juristic
// person shareholders. It returns nil when the company was already visited in
// s. The work stack is popped in the same order a depth-first recursion
// would visit nodes, so attachment and result order are deterministic.
func (e *Engine) Process(ctx context.Context, s *Session, company *models.Company) (*models.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrDeadline
	}
	if company == nil || company.BusinessAccountingNO == "" {
		return nil, nil
	}
	if !s.MarkVisited(company.BusinessAccountingNO) {
		return nil, nil
	}
	s.append(company)

	stack := e.expand(ctx, s, company, nil)
	for {
		if err := ctx.Err(); err != nil {
			return nil, ErrDeadline
		}
		if len(stack) == 0 {
			return company, nil
		}
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !s.MarkVisited(next.company.BusinessAccountingNO) {
			continue
		}
		// last attached candidate wins, as every line names a single company
		next.holder.JuristicPersonCompany = next.company
		s.append(next.company)
		stack = e.expand(ctx, s, next.company, stack)
	}
}

// expand enriches company and pushes its juristic person candidates onto
// stack so that they pop in disclosure order.
func (e *Engine) expand(ctx context.Context, s *Session, company *models.Company, stack []candidate) []candidate {
	ctx, span := e.tracer.Start(ctx, "companygraph.expand",
		trace.WithAttributes(
			attribute.String("session.id", s.ID),
			attribute.String("company.business_accounting_no", company.BusinessAccountingNO),
		),
	)
	defer span.End()

	e.logger.InfoContext(ctx, "processing company",
		"session_id", s.ID,
		"business_accounting_no", company.BusinessAccountingNO,
		"company_name", company.CompanyName,
	)

	e.enrich(ctx, s, company)
	resolved := e.resolveJuristic(ctx, s, company.AdditionalData)

	var pending []candidate
	for _, holder := range company.AdditionalData {
		if !holder.IsJuristic() {
			continue
		}
		for _, c := range resolved[holder.JuristicPersonName] {
			if c == nil || c.BusinessAccountingNO == "" {
				continue
			}
			pending = append(pending, candidate{company: c, holder: holder})
		}
	}
	for i := len(pending) - 1; i >= 0; i-- {
		stack = append(stack, pending[i])
	}
	span.SetAttributes(attribute.Int("company.candidates", len(pending)))
	return stack
}

// enrich replaces the shareholder disclosure and capital stock of company.
// A failed lookup leaves the field empty.
func (e *Engine) enrich(ctx context.Context, s *Session, company *models.Company) {
	id := company.BusinessAccountingNO
	var (
		shareholders []*models.Shareholder
		capital      *json.Number
	)

	var g errgroup.Group
	g.Go(func() error {
		rows, err := e.registry.LookupAdditionalData(ctx, id)
		if e.recordLookup(ctx, s, "additional_data", id, err) {
			shareholders = rows
		}
		return nil
	})
	g.Go(func() error {
		amount, err := e.registry.LookupCapitalStock(ctx, id)
		if e.recordLookup(ctx, s, "capital_stock", id, err) {
			capital = amount
		}
		return nil
	})
	_ = g.Wait()

	company.AdditionalData = make([]*models.Shareholder, 0, len(shareholders))
	for _, sh := range shareholders {
		if sh != nil {
			company.AdditionalData = append(company.AdditionalData, sh)
		}
	}
	company.CapitalStockAmount = capital
}

// resolveJuristic looks up each distinct juristic person name once, reading
// and filling the session cache. Names are resolved concurrently up to the
// configured fan-out.
func (e *Engine) resolveJuristic(ctx context.Context, s *Session, holders []*models.Shareholder) map[string][]*models.Company {
	resolved := make(map[string][]*models.Company)
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(e.fanOut)

	seen := make(map[string]struct{})
	for _, holder := range holders {
		if !holder.IsJuristic() {
			continue
		}
		name := holder.JuristicPersonName
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if cached, ok := s.CachedJuristic(name); ok {
			s.cacheHits.Add(1)
			e.metrics.IncrementJuristicCacheHit()
			mu.Lock()
			resolved[name] = cached
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			companies, err := e.registry.LookupByName(ctx, name)
			if !e.recordLookup(ctx, s, "juristic_person", name, err) {
				return nil
			}
			if len(companies) > 0 || e.cacheNegative {
				companies = s.StoreJuristic(name, companies)
			}
			mu.Lock()
			resolved[name] = companies
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return resolved
}

// recordLookup counts a lookup and reports whether it succeeded. Failures are
// logged and otherwise treated as "no data".
func (e *Engine) recordLookup(ctx context.Context, s *Session, operation, arg string, err error) bool {
	s.lookups.Add(1)
	if err == nil {
		return true
	}
	s.lookupFailures.Add(1)
	category := string(providers.GetCategory(err))
	e.metrics.IncrementLookupFailure(operation, category)
	e.logger.WarnContext(ctx, "registry lookup failed, treating as no data",
		"session_id", s.ID,
		"operation", operation,
		"argument", arg,
		"category", category,
		"error", err,
	)
	return false
}
