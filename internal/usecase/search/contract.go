package search

import (
	"context"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
	"github.com/shoplens/searchd/internal/domain/search/scored"
	domsess "github.com/shoplens/searchd/internal/domain/session"
	"github.com/shoplens/searchd/internal/usecase/convctx"
)

// ProductStore reads the tenant's catalog for lexical candidate enumeration
// and neighbor hydration.
type ProductStore interface {
	List(
		ctx context.Context, tenantID string, cat category.Canonical, offset, limit int,
	) ([]domprod.Product, int, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]domprod.Product, error)
}

// Retriever is the semantic retrieval branch.
type Retriever interface {
	ByText(ctx context.Context, tenantID string, gate category.Canonical, text string) ([]domain.Neighbor, error)
	ByVector(ctx context.Context, tenantID string, gate category.Canonical, embedding []float32) ([]domain.Neighbor, error)
}

// ContextTracker resolves follow-up queries and records search outcomes.
type ContextTracker interface {
	IsAnaphoric(text string) bool
	Load(ctx context.Context, tenantID, sessionID string) (domsess.Context, error)
	Resolve(ctx context.Context, c *domsess.Context) (convctx.Resolved, error)
	Update(
		ctx context.Context, c domsess.Context,
		queryText string, cat category.Canonical, resultIDs []string,
	) error
}

// Scorer is the lexical scoring branch.
type Scorer interface {
	Score(queryText string, p *domprod.Product) (float64, []string)
}

// Ranker fuses branch scores into the final ordering.
type Ranker interface {
	Rank(
		candidates []scored.Product, gate category.Canonical,
		minScore float64, degraded bool,
	) []scored.Product
}
