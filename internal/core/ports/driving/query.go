package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// QueryService answers natural-language questions against a user's
// indexed documents.
type QueryService interface {
	// Query runs the full pipeline (enhance, retrieve, rerank, generate)
	// for one question scoped to ownerID.
	Query(ctx context.Context, query, ownerID string, opts domain.QueryOptions) (*domain.Answer, error)
}
