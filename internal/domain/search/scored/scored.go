package scored

import "github.com/shoplens/searchd/internal/domain/product"

// Product is a search hit: a catalog product annotated with the scores that
// ranked it. Created fresh per search call, never persisted.
type Product struct {
	product       product.Product
	lexicalScore  float64
	vectorScore   float64
	hasVector     bool
	fusedScore    float64
	matchedFields []string
}

// New creates a scored product before fusion. hasVector marks whether a
// vector-similarity score is present (false while degraded to lexical-only
// or when the product was not among the retrieved neighbors).
func New(p product.Product, lexicalScore, vectorScore float64, hasVector bool, matchedFields []string) Product {
	return Product{
		product:       p,
		lexicalScore:  lexicalScore,
		vectorScore:   vectorScore,
		hasVector:     hasVector,
		matchedFields: matchedFields,
	}
}

// WithFused returns a copy with the fused ranking score set.
func (s Product) WithFused(fused float64) Product {
	s.fusedScore = fused
	return s
}

// Product returns the underlying catalog product.
func (s *Product) Product() product.Product { return s.product }

// LexicalScore returns the keyword-match score in [0,1].
func (s *Product) LexicalScore() float64 { return s.lexicalScore }

// VectorScore returns the cosine-derived similarity in [0,1].
func (s *Product) VectorScore() float64 { return s.vectorScore }

// HasVector reports whether a vector score is present.
func (s *Product) HasVector() bool { return s.hasVector }

// FusedScore returns the final ranking score in [0,1].
func (s *Product) FusedScore() float64 { return s.fusedScore }

// MatchedFields returns which attributes contributed to the lexical score.
func (s *Product) MatchedFields() []string { return s.matchedFields }
