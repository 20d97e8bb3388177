package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
	"github.com/shoplens/searchd/internal/domain/search/query"
	domsess "github.com/shoplens/searchd/internal/domain/session"
	"github.com/shoplens/searchd/internal/usecase/convctx"
	"github.com/shoplens/searchd/internal/usecase/fusion"
	"github.com/shoplens/searchd/internal/usecase/lexical"
)

type mockProducts struct {
	listFn     func(ctx context.Context, tenantID string, cat category.Canonical, offset, limit int) ([]domprod.Product, int, error)
	getByIDsFn func(ctx context.Context, tenantID string, ids []string) ([]domprod.Product, error)
}

func (m *mockProducts) List(
	ctx context.Context, tenantID string, cat category.Canonical, offset, limit int,
) ([]domprod.Product, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, tenantID, cat, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockProducts) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]domprod.Product, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, tenantID, ids)
	}
	return nil, nil
}

type mockRetriever struct {
	byTextFn   func(ctx context.Context, tenantID string, gate category.Canonical, text string) ([]domain.Neighbor, error)
	byVectorFn func(ctx context.Context, tenantID string, gate category.Canonical, embedding []float32) ([]domain.Neighbor, error)
}

func (m *mockRetriever) ByText(
	ctx context.Context, tenantID string, gate category.Canonical, text string,
) ([]domain.Neighbor, error) {
	if m.byTextFn != nil {
		return m.byTextFn(ctx, tenantID, gate, text)
	}
	return nil, nil
}

func (m *mockRetriever) ByVector(
	ctx context.Context, tenantID string, gate category.Canonical, embedding []float32,
) ([]domain.Neighbor, error) {
	if m.byVectorFn != nil {
		return m.byVectorFn(ctx, tenantID, gate, embedding)
	}
	return nil, nil
}

type mockTracker struct {
	isAnaphoricFn func(text string) bool
	loadFn        func(ctx context.Context, tenantID, sessionID string) (domsess.Context, error)
	resolveFn     func(ctx context.Context, c *domsess.Context) (convctx.Resolved, error)
	updateFn      func(ctx context.Context, c domsess.Context, queryText string, cat category.Canonical, resultIDs []string) error
}

func (m *mockTracker) IsAnaphoric(text string) bool {
	if m.isAnaphoricFn != nil {
		return m.isAnaphoricFn(text)
	}
	return false
}

func (m *mockTracker) Load(ctx context.Context, tenantID, sessionID string) (domsess.Context, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, tenantID, sessionID)
	}
	return domsess.New(sessionID, tenantID), nil
}

func (m *mockTracker) Resolve(ctx context.Context, c *domsess.Context) (convctx.Resolved, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, c)
	}
	return convctx.Resolved{}, domain.ErrEmptyContext
}

func (m *mockTracker) Update(
	ctx context.Context, c domsess.Context, queryText string, cat category.Canonical, resultIDs []string,
) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, c, queryText, cat, resultIDs)
	}
	return nil
}

type fixture struct {
	svc       *Service
	products  *mockProducts
	retriever *mockRetriever
	tracker   *mockTracker
}

// newFixture wires the orchestrator with real lexical and fusion components
// and mocked I/O collaborators.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		products:  &mockProducts{},
		retriever: &mockRetriever{},
		tracker:   &mockTracker{},
	}
	f.svc = New(
		f.products,
		f.retriever,
		f.tracker,
		lexical.New(lexical.DefaultWeights()),
		fusion.New(fusion.DefaultWeights()),
		category.NewNormalizer(nil),
		100,
		zap.NewNop(),
	)
	return f
}

func catalogProduct(t *testing.T, id, name, rawCat string, vec []float32) domprod.Product {
	t.Helper()
	n := category.NewNormalizer(nil)
	return domprod.Reconstruct(id, name, "", rawCat, n.Normalize(rawCat), 25, "", "tenant-a", vec)
}

func mustQuery(t *testing.T, text, rawCategory, sessionID string) *query.Query {
	t.Helper()
	q, err := query.New(text, rawCategory, "", "tenant-a", sessionID, 10, 0)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return &q
}

func mustQueryWithLimit(t *testing.T, text string, limit int) *query.Query {
	t.Helper()
	q, err := query.New(text, "", "", "tenant-a", "sess-1", limit, 0)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return &q
}
