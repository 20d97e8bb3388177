// Package vector runs KNN retrieval against the product index.
package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/shoplens/searchd/internal/db"
	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
)

// store is the consumer interface for KNN retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements vector retrieval over the db facade.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a vector retrieval repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Retrieve returns the k nearest products within the tenant, ordered by
// descending similarity. The tenant filter is part of the index query, so
// foreign products are excluded before the KNN step, and the optional
// category gate narrows the candidate set the same way.
//
// Any index failure is reported as ErrVectorUnavailable so callers can
// degrade to lexical-only ranking instead of failing the search.
func (r *Repo) Retrieve(
	ctx context.Context, tenantID string, gate category.Canonical, embedding []float32, k int,
) ([]domain.Neighbor, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrVectorUnavailable)
	}
	if k <= 0 {
		k = 10
	}

	tags := []db.TagFilter{{Field: "owner_id", Value: tenantID}}
	if gate != "" {
		tags = append(tags, db.TagFilter{Field: "canonical_category", Value: string(gate)})
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Tags:         tags,
		Vector:       embedding,
		K:            k,
		ReturnFields: []string{"__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorUnavailable, err)
	}

	neighbors := make([]domain.Neighbor, 0, len(result.Entries))
	for _, entry := range result.Entries {
		neighbors = append(neighbors, domain.Neighbor{
			ProductID:  r.extractID(entry.Key, tenantID),
			Similarity: distanceToSimilarity(entry.Score),
		})
	}
	return neighbors, nil
}

// distanceToSimilarity maps cosine distance d to (cos+1)/2 = 1 - d/2,
// clamped to [0,1] against float drift at the extremes.
func distanceToSimilarity(d float64) float64 {
	s := 1 - d/2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "products:idx"
}

func (r *Repo) extractID(key, tenantID string) string {
	prefix := fmt.Sprintf("%sproduct:%s:", r.keyPrefix, tenantID)
	return strings.TrimPrefix(key, prefix)
}
