package companygraph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"companygraph/internal/companygraph/metrics"
	"companygraph/internal/companygraph/ports/mocks"
	"companygraph/internal/registry/models"
	"companygraph/internal/registry/providers"
	dErrors "companygraph/pkg/domain-errors"
)

type ResolverSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	registry *mocks.MockRegistryPort
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.registry = mocks.NewMockRegistryPort(s.ctrl)
	s.resolver = NewResolver(s.registry, NewEngine(s.registry))
}

func (s *ResolverSuite) TearDownTest() {
	s.ctrl.Finish()
}

func amount(v string) *json.Number {
	n := json.Number(v)
	return &n
}

func (s *ResolverSuite) TestByIdentifierEnrichesMainCompany() {
	acme := &models.Company{
		BusinessAccountingNO: "12345678",
		CompanyName:          "ACME",
		ResponsibleName:      "ACME (陳一)",
	}
	s.registry.EXPECT().LookupByID(gomock.Any(), "12345678").Return([]*models.Company{acme}, nil)
	s.registry.EXPECT().LookupAdditionalData(gomock.Any(), "12345678").Return([]*models.Shareholder{
		{PositionName: "董事長", PersonName: "陳一"},
		{PositionName: "董事", PersonName: "王二"},
	}, nil)
	s.registry.EXPECT().LookupCapitalStock(gomock.Any(), "12345678").Return(amount("5000000"), nil)
	s.registry.EXPECT().LookupByResponsible(gomock.Any(), "陳一").Return([]*models.Company{
		{BusinessAccountingNO: "12345678", CompanyName: "ACME"},
	}, nil)

	result, err := s.resolver.Resolve(s.ctx, "12345678", SearchByID)
	s.Require().NoError(err)

	s.Same(acme, result.MainCompany)
	s.Equal("5000000", result.MainCompany.CapitalStockAmount.String())
	s.Require().Len(result.MainCompany.AdditionalData, 2)
	s.Equal("陳一", result.MainCompany.AdditionalData[0].PersonName)
	s.Equal("王二", result.MainCompany.AdditionalData[1].PersonName)
	s.Len(result.Companies, 1)
	s.NotEmpty(result.SessionID)
	s.Equal(int64(4), result.Stats.Lookups)
}

func (s *ResolverSuite) TestDigitsSelectIdentifierLookupInNameMode() {
	s.registry.EXPECT().LookupByID(gomock.Any(), "12345678").Return(nil, nil)

	_, err := s.resolver.Resolve(s.ctx, "12345678", SearchByName)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ResolverSuite) TestNotFound() {
	s.Run("by identifier", func() {
		s.registry.EXPECT().LookupByID(gomock.Any(), "99999999").Return([]*models.Company{}, nil)
		_, err := s.resolver.Resolve(s.ctx, "99999999", SearchByID)
		s.ErrorIs(err, ErrNotFound)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("by name", func() {
		s.registry.EXPECT().LookupByName(gomock.Any(), "Nobody").Return(nil, nil)
		_, err := s.resolver.Resolve(s.ctx, "Nobody", SearchByName)
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("by responsible name", func() {
		s.registry.EXPECT().LookupByResponsible(gomock.Any(), "無名").Return(nil, nil)
		_, err := s.resolver.Resolve(s.ctx, "X (無名)", SearchByResponsible)
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("seed lookup failure", func() {
		s.registry.EXPECT().LookupByName(gomock.Any(), "ACME").
			Return(nil, providers.NewProviderError(providers.ErrorBadData, "gcis", "malformed", nil))
		_, err := s.resolver.Resolve(s.ctx, "ACME", SearchByName)
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *ResolverSuite) TestInvalidQuery() {
	tests := []struct {
		name     string
		query    string
		searchBy SearchBy
	}{
		{name: "empty", query: "", searchBy: SearchByName},
		{name: "blank", query: "   ", searchBy: SearchByResponsible},
		{name: "non numeric identifier", query: "ACME", searchBy: SearchByID},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.resolver.Resolve(s.ctx, tt.query, tt.searchBy)
			s.ErrorIs(err, ErrInvalidQuery)
			s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func (s *ResolverSuite) TestSiblingExpansionFailureKeepsMainCompany() {
	acme := &models.Company{BusinessAccountingNO: "12345678", CompanyName: "ACME", ResponsibleName: "陳一"}
	s.registry.EXPECT().LookupByName(gomock.Any(), "ACME").Return([]*models.Company{acme}, nil)
	s.registry.EXPECT().LookupAdditionalData(gomock.Any(), "12345678").Return(nil, nil)
	s.registry.EXPECT().LookupCapitalStock(gomock.Any(), "12345678").Return(nil, nil)
	s.registry.EXPECT().LookupByResponsible(gomock.Any(), "陳一").
		Return(nil, providers.NewProviderError(providers.ErrorProviderOutage, "gcis", "down", nil))

	result, err := s.resolver.Resolve(s.ctx, "ACME", SearchByName)
	s.Require().NoError(err)
	s.Same(acme, result.MainCompany)
	s.Equal([]string{"12345678"}, ids(result.Companies))
	s.Equal(int64(1), result.Stats.LookupFailures)
}

func (s *ResolverSuite) TestMissingResponsibleNameSkipsSiblingExpansion() {
	acme := &models.Company{BusinessAccountingNO: "12345678", CompanyName: "ACME"}
	s.registry.EXPECT().LookupByID(gomock.Any(), "12345678").Return([]*models.Company{acme}, nil)
	s.registry.EXPECT().LookupAdditionalData(gomock.Any(), "12345678").Return(nil, nil)
	s.registry.EXPECT().LookupCapitalStock(gomock.Any(), "12345678").Return(nil, nil)

	result, err := s.resolver.Resolve(s.ctx, "12345678", SearchByID)
	s.Require().NoError(err)
	s.Same(acme, result.MainCompany)
}

func TestResolver_SharedResponsibleExpansion(t *testing.T) {
	registry := newFakeRegistry()
	registry.addCompany("11111111", "C Corp", "(陳一)", "100")
	registry.addCompany("22222222", "D Corp", "(陳一)", "200")
	registry.addCompany("33333333", "E Corp", "(陳一)", "300")
	registry.addCompany("44444444", "F Corp", "(王二)", "400")

	resolver := NewResolver(registry, NewEngine(registry))
	result, err := resolver.Resolve(context.Background(), "11111111", SearchByID)
	require.NoError(t, err)

	assert.Equal(t, "11111111", result.MainCompany.BusinessAccountingNO)
	assert.Subset(t, ids(result.Companies), []string{"11111111", "22222222", "33333333"})
	assert.NotContains(t, ids(result.Companies), "44444444")
	assert.Equal(t, 1, registry.callCount("additional_data", "11111111"))
}

func TestResolver_ByResponsibleName(t *testing.T) {
	registry := newFakeRegistry()
	registry.addCompany("11111111", "C Corp", "陳一", "100")
	registry.addCompany("22222222", "D Corp", "陳一", "200")
	registry.addCompany("33333333", "G Corp", "", "")
	registry.holds("22222222", "G Corp")

	resolver := NewResolver(registry, NewEngine(registry))
	result, err := resolver.Resolve(context.Background(), "C Corp (陳一)", SearchByResponsible)
	require.NoError(t, err)

	assert.Equal(t, "11111111", result.MainCompany.BusinessAccountingNO)
	assert.Equal(t, []string{"11111111", "22222222", "33333333"}, ids(result.Companies))
	assert.Equal(t, 1, registry.callCount("by_responsible", "陳一"))
}

func TestResolver_ByNameExpandsJuristicAndSiblings(t *testing.T) {
	registry := newFakeRegistry()
	registry.addCompany("11111111", "ACME", "ACME (陳一)", "")
	registry.addCompany("22222222", "ACME Holdings", "陳一", "")
	registry.addCompany("33333333", "Parent Corp", "王二", "")
	registry.holds("11111111", "Parent Corp")
	registry.holds("22222222", "Parent Corp")

	resolver := NewResolver(registry, NewEngine(registry))
	result, err := resolver.Resolve(context.Background(), "ACME", SearchByName)
	require.NoError(t, err)

	assert.Equal(t, []string{"11111111", "33333333", "22222222"}, ids(result.Companies))
	assert.Equal(t, "33333333", result.MainCompany.AdditionalData[0].JuristicPersonCompany.BusinessAccountingNO)
	assert.Equal(t, 1, registry.callCount("by_name", "Parent Corp"))
	assert.Equal(t, int64(1), result.Stats.JuristicCacheHits)
}

func TestResolver_DeadlineExceeded(t *testing.T) {
	registry := newFakeRegistry()
	registry.addCompany("11111111", "A Corp", "", "")
	registry.addCompany("22222222", "B Corp", "", "")
	registry.holds("11111111", "B Corp")
	registry.onCall = func(key string) {
		if key == "additional_data:22222222" {
			time.Sleep(50 * time.Millisecond)
		}
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	resolver := NewResolver(registry, NewEngine(registry),
		WithTimeout(10*time.Millisecond),
		WithResolverMetrics(m),
	)

	_, err := resolver.Resolve(context.Background(), "11111111", SearchByID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeadline))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveOutcome.WithLabelValues("id", "deadline")))
}

func TestResolver_RecordsOutcomeMetrics(t *testing.T) {
	registry := newFakeRegistry()
	registry.addCompany("11111111", "A Corp", "陳一", "")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	resolver := NewResolver(registry, NewEngine(registry), WithResolverMetrics(m))

	_, err := resolver.Resolve(context.Background(), "11111111", SearchByID)
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background(), "00000000", SearchByID)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveOutcome.WithLabelValues("id", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveOutcome.WithLabelValues("id", "not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CompaniesPerResolution))
}
