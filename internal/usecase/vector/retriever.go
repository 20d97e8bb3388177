// Package vector embeds query text and retrieves nearest products, with a
// per-call timeout so a slow index degrades the search instead of stalling it.
package vector

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
)

// Retriever is the semantic retrieval half of the hybrid ranking engine.
type Retriever struct {
	repo    Repository
	embed   Embedder
	topK    int
	timeout time.Duration
}

// New creates a Retriever. topK bounds the neighbor count per search.
func New(repo Repository, embed Embedder, topK int, timeout time.Duration) *Retriever {
	if topK <= 0 {
		topK = 50
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Retriever{repo: repo, embed: embed, topK: topK, timeout: timeout}
}

// ByText embeds the query text and retrieves its nearest products.
// Both the embedding call and the index call surface failures as
// ErrVectorUnavailable so the caller can degrade to lexical-only.
func (r *Retriever) ByText(
	ctx context.Context, tenantID string, gate category.Canonical, text string,
) ([]domain.Neighbor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	emb, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorUnavailable, err)
	}
	return r.retrieve(ctx, tenantID, gate, emb.Embedding)
}

// ByVector retrieves the nearest products for a prepared embedding (the
// centroid of a previous result set, for follow-up queries).
func (r *Retriever) ByVector(
	ctx context.Context, tenantID string, gate category.Canonical, embedding []float32,
) ([]domain.Neighbor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.retrieve(ctx, tenantID, gate, embedding)
}

func (r *Retriever) retrieve(
	ctx context.Context, tenantID string, gate category.Canonical, embedding []float32,
) ([]domain.Neighbor, error) {
	neighbors, err := r.repo.Retrieve(ctx, tenantID, gate, embedding, r.topK)
	if err != nil {
		return nil, err
	}
	return neighbors, nil
}
