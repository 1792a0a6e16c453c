package handler

import (
	"companygraph/internal/companygraph"
	"companygraph/internal/registry/models"
)

// CompanyResponse is the body of GET /api/company.
type CompanyResponse struct {
	MainCompany *models.Company    `json:"mainCompany"`
	Companies   []*models.Company  `json:"companies"`
	SessionID   string             `json:"sessionId"`
	Stats       companygraph.Stats `json:"stats"`
}

// NewCompanyResponse shapes a Result for the wire.
func NewCompanyResponse(r *companygraph.Result) CompanyResponse {
	companies := r.Companies
	if companies == nil {
		companies = []*models.Company{}
	}
	return CompanyResponse{
		MainCompany: r.MainCompany,
		Companies:   companies,
		SessionID:   r.SessionID,
		Stats:       r.Stats,
	}
}
