package companygraph

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"companygraph/internal/registry/models"
)

// Session is the traversal state of a single query: the visited set, the
// juristic person cache and the ordered list of companies touched. A Session
// is never shared between queries.
type Session struct {
	ID string

	mu        sync.Mutex
	visited   map[string]struct{}
	companies []*models.Company
	juristic  map[string][]*models.Company

	lookups        atomic.Int64
	lookupFailures atomic.Int64
	cacheHits      atomic.Int64
}

func NewSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		visited:  make(map[string]struct{}),
		juristic: make(map[string][]*models.Company),
	}
}

// MarkVisited records id and reports whether it was newly added.
func (s *Session) MarkVisited(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visited[id]; ok {
		return false
	}
	s.visited[id] = struct{}{}
	return true
}

// Visited reports whether id has been marked.
func (s *Session) Visited(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visited[id]
	return ok
}

func (s *Session) append(c *models.Company) {
	s.mu.Lock()
	s.companies = append(s.companies, c)
	s.mu.Unlock()
}

// Companies returns the companies touched so far in visit order.
func (s *Session) Companies() []*models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Company, len(s.companies))
	copy(out, s.companies)
	return out
}

// CachedJuristic returns the companies stored for a juristic person name.
// An entry may be empty when negative caching stored a miss.
func (s *Session) CachedJuristic(name string) ([]*models.Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	companies, ok := s.juristic[name]
	return companies, ok
}

// StoreJuristic caches companies under name unless an entry exists, and
// returns the entry that is cached afterwards.
func (s *Session) StoreJuristic(name string, companies []*models.Company) []*models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.juristic[name]; ok {
		return existing
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	s.juristic[name] = companies
	return companies
}

// Stats counts the lookups issued on behalf of the session.
type Stats struct {
	Lookups           int64 `json:"lookups"`
	LookupFailures    int64 `json:"lookupFailures"`
	JuristicCacheHits int64 `json:"juristicCacheHits"`
	ElapsedMillis     int64 `json:"elapsedMs"`
}

func (s *Session) Stats() Stats {
	return Stats{
		Lookups:           s.lookups.Load(),
		LookupFailures:    s.lookupFailures.Load(),
		JuristicCacheHits: s.cacheHits.Load(),
	}
}
