package product

import (
	"fmt"
	"regexp"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Maximum field sizes accepted at ingestion.
const (
	MaxNameSize        = 512
	MaxDescriptionSize = 16384
)

// Product is the catalog entry aggregate (immutable value object).
// The canonical category is derived once, at construction, from the raw
// category string; every later comparison uses the canonical form.
type Product struct {
	id          string
	name        string
	description string
	rawCategory string
	canonical   category.Canonical
	price       float64
	imageURL    string
	ownerID     string
	embedding   []float32
}

// New validates and creates a Product.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Name: non-empty. Price: non-negative.
// OwnerID identifies the tenant and is required.
func New(
	id, name, description, rawCategory string,
	canonical category.Canonical,
	price float64, imageURL, ownerID string,
) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("%w: product ID is required", domain.ErrInvalidProduct)
	}
	if len(id) > 256 {
		return Product{}, fmt.Errorf("%w: product ID too long (max 256)", domain.ErrInvalidProduct)
	}
	if !idRegex.MatchString(id) {
		return Product{}, fmt.Errorf("%w: product ID must be alphanumeric with underscores and hyphens", domain.ErrInvalidProduct)
	}
	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	}
	if len(name) > MaxNameSize {
		return Product{}, fmt.Errorf("%w: name too long (max %d bytes)", domain.ErrInvalidProduct, MaxNameSize)
	}
	if len(description) > MaxDescriptionSize {
		return Product{}, fmt.Errorf("%w: description too long (max %d bytes)", domain.ErrInvalidProduct, MaxDescriptionSize)
	}
	if price < 0 {
		return Product{}, fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidProduct)
	}
	if ownerID == "" {
		return Product{}, fmt.Errorf("%w: owner ID is required", domain.ErrInvalidProduct)
	}
	if canonical == "" {
		return Product{}, fmt.Errorf("%w: canonical category is required", domain.ErrInvalidProduct)
	}

	return Product{
		id:          id,
		name:        name,
		description: description,
		rawCategory: rawCategory,
		canonical:   canonical,
		price:       price,
		imageURL:    imageURL,
		ownerID:     ownerID,
	}, nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(
	id, name, description, rawCategory string,
	canonical category.Canonical,
	price float64, imageURL, ownerID string,
	embedding []float32,
) Product {
	return Product{
		id:          id,
		name:        name,
		description: description,
		rawCategory: rawCategory,
		canonical:   canonical,
		price:       price,
		imageURL:    imageURL,
		ownerID:     ownerID,
		embedding:   embedding,
	}
}

// ID returns the product identifier.
func (p *Product) ID() string { return p.id }

// Name returns the product name.
func (p *Product) Name() string { return p.name }

// Description returns the product description.
func (p *Product) Description() string { return p.description }

// RawCategory returns the category string as stored at ingestion.
func (p *Product) RawCategory() string { return p.rawCategory }

// Category returns the derived canonical category.
func (p *Product) Category() category.Canonical { return p.canonical }

// Price returns the product price.
func (p *Product) Price() float64 { return p.price }

// ImageURL returns the product image reference.
func (p *Product) ImageURL() string { return p.imageURL }

// OwnerID returns the owning tenant identifier.
func (p *Product) OwnerID() string { return p.ownerID }

// Embedding returns the embedding vector.
func (p *Product) Embedding() []float32 { return p.embedding }

// WithEmbedding returns a copy with the given embedding set.
func (p *Product) WithEmbedding(v []float32) Product {
	c := *p
	c.embedding = v
	return c
}

// EmbeddingText is the text vectorized at ingestion: name plus description.
func (p *Product) EmbeddingText() string {
	if p.description == "" {
		return p.name
	}
	return p.name + "\n" + p.description
}
