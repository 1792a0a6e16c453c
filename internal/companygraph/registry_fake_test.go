package companygraph

import (
	"context"
	"encoding/json"
	"sync"

	"companygraph/internal/registry/models"
)

// fakeRegistry serves a small in-memory company graph. Every call returns
// freshly decoded records, like the real client does.
type fakeRegistry struct {
	mu            sync.Mutex
	companies     map[string]*models.Company
	shareholders  map[string][]*models.Shareholder
	byName        map[string][]string
	byResponsible map[string][]string
	failures      map[string]error
	calls         map[string]int
	onCall        func(key string)
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		companies:     make(map[string]*models.Company),
		shareholders:  make(map[string][]*models.Shareholder),
		byName:        make(map[string][]string),
		byResponsible: make(map[string][]string),
		failures:      make(map[string]error),
		calls:         make(map[string]int),
	}
}

// addCompany registers a company and indexes it by its name and normalized
// responsible person.
func (f *fakeRegistry) addCompany(id, name, responsible, capital string) {
	c := &models.Company{
		BusinessAccountingNO: id,
		CompanyName:          name,
		ResponsibleName:      responsible,
	}
	if capital != "" {
		n := json.Number(capital)
		c.CapitalStockAmount = &n
	}
	f.companies[id] = c
	f.byName[name] = append(f.byName[name], id)
	key := NormalizeResponsibleName(responsible)
	f.byResponsible[key] = append(f.byResponsible[key], id)
}

// holds adds a juristic person shareholder line to company id.
func (f *fakeRegistry) holds(id, juristicName string) {
	f.shareholders[id] = append(f.shareholders[id], &models.Shareholder{
		PositionName:       "董事",
		PersonName:         "代表人",
		JuristicPersonName: juristicName,
	})
}

// person adds a natural person shareholder line to company id.
func (f *fakeRegistry) person(id, name string) {
	f.shareholders[id] = append(f.shareholders[id], &models.Shareholder{
		PositionName: "監察人",
		PersonName:   name,
	})
}

func (f *fakeRegistry) fail(op, arg string, err error) {
	f.failures[op+":"+arg] = err
}

func (f *fakeRegistry) callCount(op, arg string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op+":"+arg]
}

func (f *fakeRegistry) record(op, arg string) error {
	key := op + ":" + arg
	f.mu.Lock()
	f.calls[key]++
	err := f.failures[key]
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return err
}

func (f *fakeRegistry) copies(ids []string) []*models.Company {
	out := make([]*models.Company, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(f.companies[id]))
	}
	return out
}

func clone[T any](v *T) *T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

func (f *fakeRegistry) LookupByID(_ context.Context, id string) ([]*models.Company, error) {
	if err := f.record("by_id", id); err != nil {
		return nil, err
	}
	if _, ok := f.companies[id]; !ok {
		return nil, nil
	}
	return f.copies([]string{id}), nil
}

func (f *fakeRegistry) LookupByName(_ context.Context, name string) ([]*models.Company, error) {
	if err := f.record("by_name", name); err != nil {
		return nil, err
	}
	return f.copies(f.byName[name]), nil
}

func (f *fakeRegistry) LookupByResponsible(_ context.Context, name string) ([]*models.Company, error) {
	if err := f.record("by_responsible", name); err != nil {
		return nil, err
	}
	return f.copies(f.byResponsible[name]), nil
}

func (f *fakeRegistry) LookupAdditionalData(_ context.Context, id string) ([]*models.Shareholder, error) {
	if err := f.record("additional_data", id); err != nil {
		return nil, err
	}
	out := make([]*models.Shareholder, 0, len(f.shareholders[id]))
	for _, sh := range f.shareholders[id] {
		out = append(out, clone(sh))
	}
	return out, nil
}

func (f *fakeRegistry) LookupCapitalStock(_ context.Context, id string) (*json.Number, error) {
	if err := f.record("capital_stock", id); err != nil {
		return nil, err
	}
	c, ok := f.companies[id]
	if !ok || c.CapitalStockAmount == nil {
		return nil, nil
	}
	n := *c.CapitalStockAmount
	return &n, nil
}

func ids(companies []*models.Company) []string {
	out := make([]string, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.BusinessAccountingNO)
	}
	return out
}
