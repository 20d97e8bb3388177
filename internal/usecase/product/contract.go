package product

import (
	"context"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
)

// Repository defines the storage contract for catalog products.
type Repository interface {
	Upsert(ctx context.Context, p *domprod.Product) (bool, error)
	Get(ctx context.Context, tenantID, id string) (domprod.Product, error)
	List(
		ctx context.Context, tenantID string, cat category.Canonical, offset, limit int,
	) ([]domprod.Product, int, error)
	Delete(ctx context.Context, tenantID, id string) error
	Count(ctx context.Context, tenantID string) (int, error)
}

// Embedder vectorizes product text at ingestion time.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
