// Package cache reuses raw registry responses across requests for a short
// TTL. It caches upstream bytes only; traversal state is never stored.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"companygraph/internal/registry/client"
	"companygraph/internal/registry/metrics"
	"companygraph/pkg/platform/sentinel"
)

// Store persists response bodies by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// Fetcher is a client.Fetcher that consults a Store before calling next.
// Failed upstream calls and bodies that do not decode as a record list are
// never cached. Store failures degrade to a direct
// upstream call.
type Fetcher struct {
	next    client.Fetcher
	store   Store
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewFetcher wraps next with store.
func NewFetcher(next client.Fetcher, store Store, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{next: next, store: store, ttl: ttl, metrics: m, logger: logger}
}

func (f *Fetcher) Fetch(ctx context.Context, op client.Operation, arg string) ([]byte, error) {
	key := string(op) + ":" + arg

	body, err := f.store.Get(ctx, key)
	switch {
	case err == nil:
		f.metrics.RecordCacheHit(string(op))
		return body, nil
	case errors.Is(err, sentinel.ErrNotFound):
		f.metrics.RecordCacheMiss(string(op))
	default:
		f.metrics.RecordCacheMiss(string(op))
		f.logger.WarnContext(ctx, "lookup cache read failed", "operation", op, "error", err)
	}

	body, err = f.next.Fetch(ctx, op, arg)
	if err != nil {
		return nil, err
	}
	// an undecodable body is handed back uncached so the failure stays per request
	if err := client.CheckListBody(body); err != nil {
		f.logger.WarnContext(ctx, "lookup response not cached", "operation", op, "error", err)
		return body, nil
	}
	if err := f.store.Set(ctx, key, body, f.ttl); err != nil {
		f.logger.WarnContext(ctx, "lookup cache write failed", "operation", op, "error", err)
	}
	return body, nil
}
