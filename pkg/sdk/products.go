package searchd

import (
	"context"
	"fmt"
	"time"

	domprod "github.com/shoplens/searchd/internal/domain/product"
	productuc "github.com/shoplens/searchd/internal/usecase/product"
)

// ProductService manages the tenant's product catalog.
type ProductService struct {
	tenantID string
	svc      productUseCase
	obs      *observer
}

// Put creates or updates a product. Returns true if created.
// The product is embedded at write time; without an embedder the call fails.
func (s *ProductService) Put(ctx context.Context, p Product) (created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_put", start, err) }()

	_, created, err = s.svc.Put(ctx, s.tenantID, productuc.PutInput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	})
	if err != nil {
		return false, fmt.Errorf("put product: %w", err)
	}
	return created, nil
}

// Get retrieves a product by ID.
func (s *ProductService) Get(ctx context.Context, id string) (p Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_get", start, err) }()

	d, err := s.svc.Get(ctx, s.tenantID, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return fromInternalProduct(&d), nil
}

// List returns a page of the catalog, optionally narrowed by category.
func (s *ProductService) List(
	ctx context.Context, rawCategory string, offset, limit int,
) (res ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_list", start, err) }()

	products, total, err := s.svc.List(ctx, s.tenantID, rawCategory, offset, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, len(products))
	for i := range products {
		out[i] = fromInternalProduct(&products[i])
	}
	return ListResult{Products: out, Total: total}, nil
}

// Delete removes a product by ID.
func (s *ProductService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_delete", start, err) }()

	if err = s.svc.Delete(ctx, s.tenantID, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Count returns the catalog size.
func (s *ProductService) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_count", start, err) }()

	n, err = s.svc.Count(ctx, s.tenantID)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func fromInternalProduct(p *domprod.Product) Product {
	return Product{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    string(p.Category()),
		Price:       p.Price(),
		ImageURL:    p.ImageURL(),
	}
}
