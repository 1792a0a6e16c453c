package ports

import (
	"context"
	"encoding/json"

	"companygraph/internal/registry/models"
)

//go:generate mockgen -source=registry.go -destination=mocks/mocks.go -package=mocks RegistryPort

// RegistryPort is the registry lookup surface the traversal depends on.
// Implementations return decoded records that the caller owns; an empty
// slice and an error are both "no data" to the traversal.
type RegistryPort interface {
	// LookupByID returns the record registered under a Business_Accounting_NO
	LookupByID(ctx context.Context, id string) ([]*models.Company, error)

	// LookupByName returns active companies matching a name pattern
	LookupByName(ctx context.Context, namePattern string) ([]*models.Company, error)

	// LookupByResponsible returns companies sharing a responsible person
	LookupByResponsible(ctx context.Context, name string) ([]*models.Company, error)

	// LookupAdditionalData returns the shareholder disclosure of a company
	LookupAdditionalData(ctx context.Context, id string) ([]*models.Shareholder, error)

	// LookupCapitalStock returns the registered capital, nil when unknown
	LookupCapitalStock(ctx context.Context, id string) (*json.Number, error)
}
