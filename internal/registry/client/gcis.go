// Package client talks to the GCIS company registry open data API.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"companygraph/internal/registry/metrics"
	"companygraph/internal/registry/providers"
	"companygraph/pkg/platform/circuit"
)

// ProviderID names the upstream in errors, logs and breaker state.
const ProviderID = "gcis"

// Operation identifies one registry query shape.
type Operation string

const (
	OpByID           Operation = "by_id"
	OpByName         Operation = "by_name"
	OpByResponsible  Operation = "by_responsible"
	OpAdditionalData Operation = "additional_data"
)

// GCIS dataset identifiers.
const (
	datasetCompanyBasic   = "5F64D864-61CB-4D0D-8AD9-492047CC1EA6"
	datasetCompanyByName  = "6BBA2268-1367-4B42-9CCA-BC17499EBE8C"
	datasetByResponsible  = "4B61A0F1-458C-43F9-93F3-9FD6DA5E1B08"
	datasetShareholderRep = "4E5F7653-1B91-4DDC-99D5-468530FAE396"
)

// activeCompanyStatus is the Company_Status code for companies in good standing.
const activeCompanyStatus = "01"

// DefaultInitialBackoff is the first retry delay; later delays grow
// exponentially.
const DefaultInitialBackoff = 250 * time.Millisecond

// maxBodyBytes caps a single response; 50 records are far below this.
const maxBodyBytes = 8 << 20

// Fetcher returns the raw JSON body of one registry query.
type Fetcher interface {
	Fetch(ctx context.Context, op Operation, arg string) ([]byte, error)
}

var tracer = otel.Tracer("companygraph/registry")

// GCIS is an HTTP Fetcher for the GCIS open data API with per-call timeouts,
// bounded retries for transient failures, and a circuit breaker.
type GCIS struct {
	baseURL        string
	httpClient     *http.Client
	callTimeout    time.Duration
	maxRetries     uint64
	initialBackoff time.Duration
	pageSize       int
	breaker        *circuit.Breaker
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// Option configures a GCIS client.
type Option func(*GCIS)

func WithHTTPClient(c *http.Client) Option {
	return func(g *GCIS) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithCallTimeout bounds each HTTP attempt.
func WithCallTimeout(d time.Duration) Option {
	return func(g *GCIS) {
		if d > 0 {
			g.callTimeout = d
		}
	}
}

// WithRetries sets how many times a retryable failure is retried and the
// first backoff interval.
func WithRetries(max uint64, initial time.Duration) Option {
	return func(g *GCIS) {
		g.maxRetries = max
		if initial > 0 {
			g.initialBackoff = initial
		}
	}
}

func WithPageSize(n int) Option {
	return func(g *GCIS) {
		if n > 0 {
			g.pageSize = n
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(g *GCIS) {
		g.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *GCIS) {
		g.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *GCIS) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGCIS constructs a client rooted at baseURL (for example
// https://data.gcis.nat.gov.tw/od/data/api).
func NewGCIS(baseURL string, opts ...Option) *GCIS {
	g := &GCIS{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		callTimeout:    10 * time.Second,
		maxRetries:     2,
		initialBackoff: DefaultInitialBackoff,
		pageSize:       50,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Fetch runs one registry query and returns the raw response body.
func (g *GCIS) Fetch(ctx context.Context, op Operation, arg string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "registry.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("registry.operation", string(op)),
		attribute.String("registry.argument", arg),
	)

	target, err := g.buildURL(op, arg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	start := time.Now()
	var body []byte
	attempt := func() error {
		var attemptErr error
		body, attemptErr = g.do(ctx, target)
		if attemptErr != nil && !providers.IsRetryable(attemptErr) {
			return backoff.Permanent(attemptErr)
		}
		return attemptErr
	}
	notify := func(err error, wait time.Duration) {
		g.metrics.IncrementRetry(string(op))
		g.logger.DebugContext(ctx, "retrying registry lookup",
			"operation", op,
			"argument", arg,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)
	}

	err = backoff.RetryNotify(attempt, g.newBackOff(ctx), notify)
	g.metrics.ObserveLookup(string(op), time.Since(start))
	if err != nil {
		err = normalize(err)
		g.metrics.IncrementError(string(op), string(providers.GetCategory(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("registry.response_bytes", len(body)))
	return body, nil
}

func (g *GCIS) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = g.initialBackoff
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, g.maxRetries), ctx)
}

// do performs a single attempt and records its outcome on the breaker.
func (g *GCIS) do(ctx context.Context, target string) ([]byte, error) {
	if g.breaker != nil && !g.breaker.Allow() {
		return nil, providers.NewProviderError(providers.ErrorCircuitOpen, ProviderID, "registry circuit open", nil)
	}

	body, err := g.get(ctx, target)

	if g.breaker != nil {
		if err != nil && providers.IsRetryable(err) {
			if _, change := g.breaker.RecordFailure(); change.Opened {
				g.logger.WarnContext(ctx, "registry circuit opened", "provider", ProviderID)
			}
		} else {
			if _, change := g.breaker.RecordSuccess(); change.Closed {
				g.logger.InfoContext(ctx, "registry circuit closed", "provider", ProviderID)
			}
		}
	}
	return body, err
}

func (g *GCIS) get(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, providers.NewProviderError(providers.ErrorTimeout, ProviderID, "request timed out", err)
		}
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, ProviderID, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, providers.NewProviderError(providers.ErrorTimeout, ProviderID, "reading response timed out", err)
		}
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, ProviderID, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, providers.NewProviderError(providers.ErrorNotFound, ProviderID, "dataset not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, providers.NewProviderError(providers.ErrorRateLimited, ProviderID, "rate limited", nil)
	case resp.StatusCode >= 500:
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, ProviderID,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	default:
		return nil, providers.NewProviderError(providers.ErrorInternal, ProviderID,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
}

func (g *GCIS) buildURL(op Operation, arg string) (string, error) {
	var dataset, filter string
	if (op == OpByID || op == OpAdditionalData) && !isDigits(arg) {
		return "", providers.NewProviderError(providers.ErrorInternal, ProviderID, "identifier must be numeric: "+arg, nil)
	}
	switch op {
	case OpByID:
		dataset = datasetCompanyBasic
		filter = "Business_Accounting_NO eq " + arg
	case OpAdditionalData:
		dataset = datasetShareholderRep
		filter = "Business_Accounting_NO eq " + arg
	case OpByName:
		dataset = datasetCompanyByName
		filter = fmt.Sprintf("Company_Name like '%s' and Company_Status eq %s", quoteLiteral(arg), activeCompanyStatus)
	case OpByResponsible:
		dataset = datasetByResponsible
		filter = fmt.Sprintf("Responsible_Name eq '%s'", quoteLiteral(arg))
	default:
		return "", providers.NewProviderError(providers.ErrorInternal, ProviderID, "unknown operation "+string(op), nil)
	}

	q := url.Values{}
	q.Set("$format", "json")
	q.Set("$filter", filter)
	q.Set("$skip", "0")
	q.Set("$top", strconv.Itoa(g.pageSize))
	return g.baseURL + "/" + dataset + "?" + q.Encode(), nil
}

// quoteLiteral escapes a value for use inside a single-quoted filter literal.
func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
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

// normalize turns context errors surfaced by the backoff loop into provider
// errors.
func normalize(err error) error {
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return providers.NewProviderError(providers.ErrorTimeout, ProviderID, "lookup cancelled", err)
	}
	return providers.NewProviderError(providers.ErrorInternal, ProviderID, "lookup failed", err)
}
