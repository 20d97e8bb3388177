package searchd

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplens/searchd/internal/domain/search/query"
)

// Search runs one ranked catalog search.
// Carry the same SessionID across calls to make follow-up queries
// ("show me similar") resolvable against the conversation context.
func (c *Client) Search(ctx context.Context, sq SearchQuery) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	q, err := query.New(
		sq.Query, sq.Category, sq.ImageURL,
		c.tenantID, sq.SessionID, sq.Limit, sq.MinScore,
	)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	results, err := c.searchSvc.Search(ctx, &q)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	out := make([]SearchResult, len(results.Products))
	for i := range results.Products {
		sp := &results.Products[i]
		out[i] = SearchResult{
			Product:       fromInternalProduct(ptr(sp.Product())),
			FusedScore:    sp.FusedScore(),
			LexicalScore:  sp.LexicalScore(),
			VectorScore:   sp.VectorScore(),
			HasVector:     sp.HasVector(),
			MatchedFields: sp.MatchedFields(),
		}
	}
	return SearchResponse{
		Results:   out,
		Path:      results.Path,
		Degraded:  results.Degraded,
		Anaphoric: results.Anaphoric,
	}, nil
}

func ptr[T any](v T) *T { return &v }
