package companygraph

import dErrors "companygraph/pkg/domain-errors"

var (
	// ErrNotFound means the seed query matched no registry records.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "No company found")

	// ErrInvalidQuery means the query is empty or does not fit the search mode.
	ErrInvalidQuery = dErrors.New(dErrors.CodeBadRequest, "query is required and must match search_by")

	// ErrDeadline means the resolution deadline expired or the caller went away.
	ErrDeadline = dErrors.New(dErrors.CodeTimeout, "company resolution timed out")
)
