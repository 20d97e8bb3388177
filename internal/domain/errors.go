package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the generic missing-resource class. Resource-specific
	// sentinels wrap it, so errors.Is(err, ErrNotFound) matches any of them.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound signals a missing product. Wraps ErrNotFound.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrInvalidQuery signals a request the caller must fix (e.g. no query text
	// and no usable conversation context).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidProduct signals an ingestion payload the caller must fix.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrEmptyContext signals an anaphoric query ("similar products") issued
	// before any prior search in the session. Surfaced to the user as a
	// clarification request, not a generic failure.
	ErrEmptyContext = errors.New("no prior product to compare against")
	// ErrVectorUnavailable signals that the vector index or embedding provider
	// is unreachable. Search degrades to lexical-only ranking; the request
	// itself never fails on this.
	ErrVectorUnavailable = errors.New("vector search unavailable")
	// ErrTenantIsolation signals a candidate product owned by another tenant.
	// Unreachable by construction; treated as an invariant breach when seen.
	ErrTenantIsolation = errors.New("tenant isolation violation")
	// ErrRevisionConflict signals an optimistic locking conflict on session state.
	ErrRevisionConflict = errors.New("revision conflict")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// RevisionConflictError wraps ErrRevisionConflict with the current resource revision.
type RevisionConflictError struct {
	CurrentRevision int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("%s: current revision is %d", ErrRevisionConflict.Error(), e.CurrentRevision)
}

func (e *RevisionConflictError) Unwrap() error { return ErrRevisionConflict }

// NewRevisionConflict creates a revision conflict error.
func NewRevisionConflict(currentRevision int) error {
	return &RevisionConflictError{CurrentRevision: currentRevision}
}
