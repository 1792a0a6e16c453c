package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"companygraph/internal/companygraph"
	"companygraph/internal/companygraph/handler/mocks"
	"companygraph/internal/registry/models"
	"companygraph/pkg/platform/httputil"
	"companygraph/pkg/testutil"
)

type CompanyHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestCompanyHandlerSuite(t *testing.T) {
	suite.Run(t, new(CompanyHandlerSuite))
}

func (s *CompanyHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *CompanyHandlerSuite) get(params url.Values) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.Get(s.T(), "/api/company", params))
}

func (s *CompanyHandlerSuite) TestReturnsResolvedGraph() {
	main := &models.Company{BusinessAccountingNO: "12345678", CompanyName: "ACME", ResponsibleName: "陳一"}
	sibling := &models.Company{BusinessAccountingNO: "87654321", CompanyName: "ACME Holdings"}
	s.service.EXPECT().
		Resolve(gomock.Any(), "12345678", companygraph.SearchByID).
		Return(&companygraph.Result{
			MainCompany: main,
			Companies:   []*models.Company{main, sibling},
			SessionID:   "session-1",
			Stats:       companygraph.Stats{Lookups: 5},
		}, nil)

	w := s.get(url.Values{"query": {"12345678"}, "search_by": {"id"}})

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/json", w.Header().Get("Content-Type"))
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("12345678", body["mainCompany"].(map[string]any)["Business_Accounting_NO"])
	s.Len(body["companies"], 2)
	s.Equal("session-1", body["sessionId"])
	s.Equal(float64(5), body["stats"].(map[string]any)["lookups"])
}

func (s *CompanyHandlerSuite) TestSearchByDefaultsToName() {
	s.service.EXPECT().
		Resolve(gomock.Any(), "台灣積體電路", companygraph.SearchByName).
		Return(&companygraph.Result{MainCompany: &models.Company{BusinessAccountingNO: "1"}}, nil)

	w := s.get(url.Values{"query": {"台灣積體電路"}})

	s.Equal(http.StatusOK, w.Code)
	body := testutil.UnmarshalResponse[CompanyResponse](s.T(), w)
	s.NotNil(body.Companies)
}

func (s *CompanyHandlerSuite) TestErrorMapping() {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "not found", err: companygraph.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "invalid query", err: companygraph.ErrInvalidQuery, status: http.StatusBadRequest, code: "bad_request"},
		{name: "deadline", err: companygraph.ErrDeadline, status: http.StatusGatewayTimeout, code: "timeout"},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal_error"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.EXPECT().
				Resolve(gomock.Any(), "ACME", companygraph.SearchByResponsible).
				Return(nil, tt.err)

			w := s.get(url.Values{"query": {"ACME"}, "search_by": {"responsible_name"}})

			testutil.AssertStatusAndError(s.T(), w, tt.status, tt.code)
		})
	}
}

func (s *CompanyHandlerSuite) TestNotFoundDescription() {
	s.service.EXPECT().Resolve(gomock.Any(), "Nobody", companygraph.SearchByName).Return(nil, companygraph.ErrNotFound)

	w := s.get(url.Values{"query": {"Nobody"}})

	body := testutil.UnmarshalResponse[httputil.ErrorResponse](s.T(), w)
	s.Equal("No company found", body.ErrorDescription)
}

func (s *CompanyHandlerSuite) TestPassesRequestContext() {
	s.service.EXPECT().
		Resolve(gomock.Any(), "", companygraph.SearchByName).
		DoAndReturn(func(ctx context.Context, _ string, _ companygraph.SearchBy) (*companygraph.Result, error) {
			s.NotNil(ctx)
			return nil, companygraph.ErrInvalidQuery
		})

	w := s.get(nil)
	s.Equal(http.StatusBadRequest, w.Code)
}
