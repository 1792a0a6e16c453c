package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"companygraph/internal/registry/models"
	"companygraph/internal/registry/providers"
)

// Registry decodes Fetcher responses into registry records. Every call
// decodes fresh values, so records are never shared between callers.
type Registry struct {
	fetcher Fetcher
}

// NewRegistry wraps a Fetcher (the GCIS client, optionally behind a cache).
func NewRegistry(f Fetcher) *Registry {
	return &Registry{fetcher: f}
}

// LookupByID returns the company registered under a Business_Accounting_NO.
func (r *Registry) LookupByID(ctx context.Context, id string) ([]*models.Company, error) {
	return fetchList[*models.Company](ctx, r.fetcher, OpByID, id)
}

// LookupByName returns active companies whose name matches namePattern.
func (r *Registry) LookupByName(ctx context.Context, namePattern string) ([]*models.Company, error) {
	return fetchList[*models.Company](ctx, r.fetcher, OpByName, namePattern)
}

// LookupByResponsible returns companies whose responsible person is name.
func (r *Registry) LookupByResponsible(ctx context.Context, name string) ([]*models.Company, error) {
	return fetchList[*models.Company](ctx, r.fetcher, OpByResponsible, name)
}

// LookupAdditionalData returns the shareholder/representative disclosure of
// a company.
func (r *Registry) LookupAdditionalData(ctx context.Context, id string) ([]*models.Shareholder, error) {
	return fetchList[*models.Shareholder](ctx, r.fetcher, OpAdditionalData, id)
}

// LookupCapitalStock returns the registered capital of a company, or nil
// when the registry has no amount for it. It reads the same dataset as
// LookupByID.
func (r *Registry) LookupCapitalStock(ctx context.Context, id string) (*json.Number, error) {
	companies, err := r.LookupByID(ctx, id)
	if err != nil || len(companies) == 0 {
		return nil, err
	}
	return companies[0].CapitalStockAmount, nil
}

// fetchList decodes a JSON array body. An empty body or a JSON null is an
// empty result, which GCIS returns for filters without matches.
func fetchList[T any](ctx context.Context, f Fetcher, op Operation, arg string) ([]T, error) {
	body, err := f.Fetch(ctx, op, arg)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "decode "+string(op)+" response", err)
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, providers.NewProviderError(providers.ErrorBadData, ProviderID, "decode "+string(op)+" record", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// CheckListBody reports whether body has a shape fetchList can decode: empty,
// null, or a JSON array whose elements are objects or null.
func CheckListBody(body []byte) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return err
	}
	for i, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if bytes.Equal(raw, []byte("null")) || (len(raw) > 0 && raw[0] == '{') {
			continue
		}
		return fmt.Errorf("element %d is not an object", i)
	}
	return nil
}
