package searchd

import "github.com/shoplens/searchd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrInvalidProduct         = domain.ErrInvalidProduct
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrEmptyContext           = domain.ErrEmptyContext
	ErrVectorUnavailable      = domain.ErrVectorUnavailable
	ErrRevisionConflict       = domain.ErrRevisionConflict
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
