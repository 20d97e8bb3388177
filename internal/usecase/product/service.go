// Package product handles catalog ingestion: validation, category
// canonicalization and embedding happen at write time so searches read a
// fully prepared corpus.
package product

import (
	"context"
	"fmt"

	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
)

// PutInput is the raw ingestion payload for one product.
type PutInput struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       float64
	ImageURL    string
}

// Service manages the product catalog.
type Service struct {
	repo       Repository
	embed      Embedder
	normalizer *category.Normalizer
}

// New creates a product service.
func New(repo Repository, embed Embedder, normalizer *category.Normalizer) *Service {
	return &Service{repo: repo, embed: embed, normalizer: normalizer}
}

// Put validates, canonicalizes, embeds and stores a product.
// Returns the stored product and whether it was newly created.
// Unlike search, an embedding failure here fails the call: a product
// without a vector would be invisible to the semantic branch forever.
func (s *Service) Put(ctx context.Context, tenantID string, in PutInput) (domprod.Product, bool, error) {
	canonical := s.normalizer.Normalize(in.Category)

	p, err := domprod.New(
		in.ID, in.Name, in.Description, in.Category,
		canonical, in.Price, in.ImageURL, tenantID,
	)
	if err != nil {
		return domprod.Product{}, false, err
	}

	emb, err := s.embed.Embed(ctx, p.EmbeddingText())
	if err != nil {
		return domprod.Product{}, false, fmt.Errorf("embed product %s: %w", in.ID, err)
	}
	p = p.WithEmbedding(emb.Embedding)

	created, err := s.repo.Upsert(ctx, &p)
	if err != nil {
		return domprod.Product{}, false, fmt.Errorf("store product %s: %w", in.ID, err)
	}
	return p, created, nil
}

// Get returns one product within the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id string) (domprod.Product, error) {
	p, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// List enumerates the tenant's products, optionally narrowed by category.
// The category filter accepts raw input and is canonicalized first.
func (s *Service) List(
	ctx context.Context, tenantID, rawCategory string, offset, limit int,
) ([]domprod.Product, int, error) {
	var cat category.Canonical
	if rawCategory != "" {
		cat = s.normalizer.Normalize(rawCategory)
	}

	products, total, err := s.repo.List(ctx, tenantID, cat, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// Delete removes one product within the tenant.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

// Count returns the tenant's catalog size.
func (s *Service) Count(ctx context.Context, tenantID string) (int, error) {
	n, err := s.repo.Count(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
