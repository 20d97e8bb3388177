package vector

import (
	"context"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
)

// Repository runs KNN retrieval against the product index.
type Repository interface {
	Retrieve(
		ctx context.Context, tenantID string, gate category.Canonical,
		embedding []float32, k int,
	) ([]domain.Neighbor, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
