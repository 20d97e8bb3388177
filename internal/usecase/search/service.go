// Package search orchestrates the hybrid ranking pipeline: lexical scoring
// and vector retrieval run concurrently, join, and fuse into one ordering.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	"github.com/shoplens/searchd/internal/domain/search/query"
	"github.com/shoplens/searchd/internal/domain/search/scored"
	domsess "github.com/shoplens/searchd/internal/domain/session"
)

// Ranking path reported in result metadata.
const (
	PathFused       = "fused"
	PathLexicalOnly = "lexical_only"
)

// Results is the ranked outcome of one search.
type Results struct {
	Products []scored.Product
	Path     string
	Degraded bool
	// Anaphoric reports whether the query was resolved from conversation context.
	Anaphoric bool
}

// Service runs the search pipeline end to end.
type Service struct {
	products   ProductStore
	retriever  Retriever
	tracker    ContextTracker
	scorer     Scorer
	ranker     Ranker
	normalizer *category.Normalizer

	candidateLimit int
	logger         *zap.Logger
}

// New creates a search service.
func New(
	products ProductStore,
	retriever Retriever,
	tracker ContextTracker,
	scorer Scorer,
	ranker Ranker,
	normalizer *category.Normalizer,
	candidateLimit int,
	logger *zap.Logger,
) *Service {
	if candidateLimit <= 0 {
		candidateLimit = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products:       products,
		retriever:      retriever,
		tracker:        tracker,
		scorer:         scorer,
		ranker:         ranker,
		normalizer:     normalizer,
		candidateLimit: candidateLimit,
		logger:         logger,
	}
}

// Search executes one ranked catalog search.
//
// A follow-up query ("show me similar") is resolved against the session
// context before the branches run. The vector branch may degrade without
// failing the request; the session context is overwritten with the outcome
// even when the result set is empty.
func (s *Service) Search(ctx context.Context, q *query.Query) (Results, error) {
	sctx, err := s.loadContext(ctx, q)
	if err != nil {
		return Results{}, err
	}

	eff, err := s.effectiveQuery(ctx, q, &sctx)
	if err != nil {
		return Results{}, err
	}

	candidates, neighbors, degraded, err := s.runBranches(ctx, q, eff)
	if err != nil {
		return Results{}, err
	}

	merged, err := s.merge(ctx, q.TenantID(), eff.text, candidates, neighbors)
	if err != nil {
		return Results{}, err
	}

	ranked := s.ranker.Rank(merged, eff.gate, q.MinScore(), degraded)
	if len(ranked) > q.Limit() {
		ranked = ranked[:q.Limit()]
	}

	s.recordOutcome(ctx, q, sctx, eff, ranked)

	path := PathFused
	if degraded {
		path = PathLexicalOnly
	}
	return Results{
		Products:  ranked,
		Path:      path,
		Degraded:  degraded,
		Anaphoric: eff.anaphoric,
	}, nil
}

// effective is the query after anaphora resolution.
type effective struct {
	text      string
	gate      category.Canonical
	embedding []float32
	anaphoric bool
}

func (s *Service) loadContext(ctx context.Context, q *query.Query) (domsess.Context, error) {
	if q.SessionID() == "" {
		return domsess.Context{}, nil
	}
	sctx, err := s.tracker.Load(ctx, q.TenantID(), q.SessionID())
	if err != nil {
		return domsess.Context{}, fmt.Errorf("load context: %w", err)
	}
	return sctx, nil
}

func (s *Service) effectiveQuery(
	ctx context.Context, q *query.Query, sctx *domsess.Context,
) (effective, error) {
	eff := effective{text: q.Text()}
	if q.RawCategory() != "" {
		eff.gate = s.normalizer.Normalize(q.RawCategory())
	}

	if q.Text() == "" || !s.tracker.IsAnaphoric(q.Text()) {
		return eff, nil
	}

	if q.SessionID() == "" {
		return effective{}, domain.ErrEmptyContext
	}
	resolved, err := s.tracker.Resolve(ctx, sctx)
	if err != nil {
		return effective{}, err
	}

	eff.anaphoric = true
	eff.text = resolved.Text
	eff.embedding = resolved.Embedding
	if eff.gate == "" {
		eff.gate = resolved.Category
	}
	return eff, nil
}

// runBranches executes the lexical candidate fetch and the vector retrieval
// concurrently. A vector-unavailable failure flips degraded instead of
// failing the request; any other failure cancels the sibling branch.
func (s *Service) runBranches(
	ctx context.Context, q *query.Query, eff effective,
) (candidates []scored.Product, neighbors []domain.Neighbor, degraded bool, err error) {
	g, gctx := errgroup.WithContext(ctx)

	var candidateList []scored.Product
	g.Go(func() error {
		list, _, err := s.products.List(gctx, q.TenantID(), eff.gate, 0, s.candidateLimit)
		if err != nil {
			return fmt.Errorf("list candidates: %w", err)
		}
		candidateList = make([]scored.Product, 0, len(list))
		for i := range list {
			lex, fields := s.scorer.Score(eff.text, &list[i])
			candidateList = append(candidateList, scored.New(list[i], lex, 0, false, fields))
		}
		return nil
	})

	var hits []domain.Neighbor
	var vectorDown bool
	g.Go(func() error {
		ns, err := s.retrieveNeighbors(gctx, q, eff)
		if err != nil {
			if errors.Is(err, domain.ErrVectorUnavailable) {
				vectorDown = true
				s.logger.Warn("vector retrieval unavailable, degrading to lexical-only",
					zap.String("tenant_id", q.TenantID()), zap.Error(err))
				return nil
			}
			return err
		}
		hits = ns
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, false, err
	}
	return candidateList, hits, vectorDown, nil
}

func (s *Service) retrieveNeighbors(
	ctx context.Context, q *query.Query, eff effective,
) ([]domain.Neighbor, error) {
	switch {
	case len(eff.embedding) > 0:
		return s.retriever.ByVector(ctx, q.TenantID(), eff.gate, eff.embedding)
	case eff.text != "":
		return s.retriever.ByText(ctx, q.TenantID(), eff.gate, eff.text)
	case q.ImageURL() != "":
		return s.retriever.ByText(ctx, q.TenantID(), eff.gate, q.ImageURL())
	default:
		return nil, fmt.Errorf("%w: nothing to vectorize", domain.ErrVectorUnavailable)
	}
}

// merge attaches vector scores to the lexical candidates and hydrates
// neighbors the candidate enumeration missed. Every product that enters the
// fusion set is ownership-checked; a foreign product is an isolation breach
// and fails the whole request.
func (s *Service) merge(
	ctx context.Context, tenantID, effText string,
	candidates []scored.Product, neighbors []domain.Neighbor,
) ([]scored.Product, error) {
	similarity := make(map[string]float64, len(neighbors))
	for _, n := range neighbors {
		similarity[n.ProductID] = n.Similarity
	}

	merged := make([]scored.Product, 0, len(candidates)+len(neighbors))
	seen := make(map[string]struct{}, len(candidates))

	for i := range candidates {
		p := candidates[i].Product()
		if p.OwnerID() != tenantID {
			return nil, s.isolationBreach(tenantID, p.ID(), p.OwnerID())
		}
		seen[p.ID()] = struct{}{}

		if sim, ok := similarity[p.ID()]; ok {
			merged = append(merged, scored.New(
				p, candidates[i].LexicalScore(), sim, true, candidates[i].MatchedFields(),
			))
		} else {
			merged = append(merged, candidates[i])
		}
	}

	var missing []string
	for _, n := range neighbors {
		if _, ok := seen[n.ProductID]; !ok {
			missing = append(missing, n.ProductID)
		}
	}
	if len(missing) == 0 {
		return merged, nil
	}

	extra, err := s.products.GetByIDs(ctx, tenantID, missing)
	if err != nil {
		return nil, fmt.Errorf("hydrate neighbors: %w", err)
	}
	for i := range extra {
		if extra[i].OwnerID() != tenantID {
			return nil, s.isolationBreach(tenantID, extra[i].ID(), extra[i].OwnerID())
		}
		lex, fields := s.scorer.Score(effText, &extra[i])
		merged = append(merged, scored.New(extra[i], lex, similarity[extra[i].ID()], true, fields))
	}
	return merged, nil
}

func (s *Service) isolationBreach(tenantID, productID, ownerID string) error {
	s.logger.Error("tenant isolation breach detected",
		zap.String("tenant_id", tenantID),
		zap.String("product_id", productID),
		zap.String("owner_id", ownerID),
	)
	return fmt.Errorf("%w: product %s", domain.ErrTenantIsolation, productID)
}

// recordOutcome overwrites the session context, empty result set included.
// Failures are logged and swallowed: losing one context update must not
// fail a search that already succeeded.
func (s *Service) recordOutcome(
	ctx context.Context, q *query.Query, sctx domsess.Context,
	eff effective, ranked []scored.Product,
) {
	if q.SessionID() == "" {
		return
	}

	ids := make([]string, 0, len(ranked))
	for i := range ranked {
		p := ranked[i].Product()
		ids = append(ids, p.ID())
	}

	if err := s.tracker.Update(ctx, sctx, eff.text, eff.gate, ids); err != nil {
		s.logger.Warn("failed to record search outcome",
			zap.String("session_id", q.SessionID()), zap.Error(err))
	}
}
