package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
	domsess "github.com/shoplens/searchd/internal/domain/session"
	"github.com/shoplens/searchd/internal/usecase/convctx"
)

func resultIDs(r Results) []string {
	out := make([]string, 0, len(r.Products))
	for i := range r.Products {
		p := r.Products[i].Product()
		out = append(out, p.ID())
	}
	return out
}

func TestSearch_HybridRanking(t *testing.T) {
	f := newFixture(t)

	// "red dress": exact name match on A, one-token matches on B and C.
	f.products.listFn = func(_ context.Context, tenantID string, _ category.Canonical, _, _ int) ([]domprod.Product, int, error) {
		if tenantID != "tenant-a" {
			t.Errorf("unexpected tenant: %s", tenantID)
		}
		return []domprod.Product{
			catalogProduct(t, "red-dress", "Red Dress", "clothing", nil),
			catalogProduct(t, "blue-dress", "Blue Dress", "clothing", nil),
			catalogProduct(t, "red-shirt", "Red Shirt", "clothing", nil),
		}, 3, nil
	}
	f.retriever.byTextFn = func(_ context.Context, _ string, _ category.Canonical, text string) ([]domain.Neighbor, error) {
		if text != "red dress" {
			t.Errorf("unexpected vectorized text: %q", text)
		}
		return []domain.Neighbor{
			{ProductID: "red-dress", Similarity: 0.90},
			{ProductID: "blue-dress", Similarity: 0.60},
			{ProductID: "red-shirt", Similarity: 0.50},
		}, nil
	}

	got, err := f.svc.Search(context.Background(), mustQuery(t, "red dress", "", "sess-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Path != PathFused || got.Degraded {
		t.Errorf("expected fused path, got %q degraded=%v", got.Path, got.Degraded)
	}
	want := []string{"red-dress", "blue-dress", "red-shirt"}
	ids := resultIDs(got)
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, ids)
		}
	}
}

func TestSearch_DegradesToLexicalOnly(t *testing.T) {
	f := newFixture(t)

	f.products.listFn = func(_ context.Context, _ string, _ category.Canonical, _, _ int) ([]domprod.Product, int, error) {
		return []domprod.Product{
			catalogProduct(t, "red-dress", "Red Dress", "clothing", nil),
			catalogProduct(t, "red-shirt", "Red Shirt", "clothing", nil),
		}, 2, nil
	}
	f.retriever.byTextFn = func(_ context.Context, _ string, _ category.Canonical, _ string) ([]domain.Neighbor, error) {
		return nil, fmt.Errorf("%w: index down", domain.ErrVectorUnavailable)
	}

	got, err := f.svc.Search(context.Background(), mustQuery(t, "red dress", "", "sess-1"))
	if err != nil {
		t.Fatalf("degradation must not fail the request: %v", err)
	}
	if got.Path != PathLexicalOnly || !got.Degraded {
		t.Errorf("expected lexical_only degraded path, got %q degraded=%v", got.Path, got.Degraded)
	}
	ids := resultIDs(got)
	if len(ids) != 2 || ids[0] != "red-dress" {
		t.Errorf("expected lexical ordering with red-dress first, got %v", ids)
	}
}

func TestSearch_CategorySynonymGate(t *testing.T) {
	f := newFixture(t)

	var listGate category.Canonical
	f.products.listFn = func(_ context.Context, _ string, cat category.Canonical, _, _ int) ([]domprod.Product, int, error) {
		listGate = cat
		return []domprod.Product{
			catalogProduct(t, "ring", "Gold Ring", "Jewelry", nil),
			catalogProduct(t, "lipstick", "Gold Lipstick", "cosmetics", nil),
		}, 2, nil
	}
	var knnGate category.Canonical
	f.retriever.byTextFn = func(_ context.Context, _ string, gate category.Canonical, _ string) ([]domain.Neighbor, error) {
		knnGate = gate
		return nil, nil
	}

	got, err := f.svc.Search(context.Background(), mustQuery(t, "gold", "Jewellery", "sess-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// British spelling normalizes to the same canonical cluster.
	if listGate != "jewelry" || knnGate != "jewelry" {
		t.Errorf("expected jewelry gate on both branches, got %q / %q", listGate, knnGate)
	}
	// The off-category candidate is dropped even though it matched lexically.
	ids := resultIDs(got)
	if len(ids) != 1 || ids[0] != "ring" {
		t.Errorf("expected only the ring, got %v", ids)
	}
}

func TestSearch_AnaphoraWithEmptyContext(t *testing.T) {
	f := newFixture(t)

	f.tracker.isAnaphoricFn = func(text string) bool { return text == "similar products" }
	f.tracker.resolveFn = func(_ context.Context, _ *domsess.Context) (convctx.Resolved, error) {
		return convctx.Resolved{}, domain.ErrEmptyContext
	}

	_, err := f.svc.Search(context.Background(), mustQuery(t, "similar products", "", "sess-1"))
	if !errors.Is(err, domain.ErrEmptyContext) {
		t.Fatalf("expected ErrEmptyContext, got %v", err)
	}
}

func TestSearch_AnaphoraResolvedFromContext(t *testing.T) {
	f := newFixture(t)

	centroid := []float32{0.5, 0.5}
	f.tracker.isAnaphoricFn = func(text string) bool { return text == "show me similar" }
	f.tracker.resolveFn = func(_ context.Context, _ *domsess.Context) (convctx.Resolved, error) {
		return convctx.Resolved{Text: "red dress", Category: "clothing", Embedding: centroid}, nil
	}

	f.products.listFn = func(_ context.Context, _ string, cat category.Canonical, _, _ int) ([]domprod.Product, int, error) {
		if cat != "clothing" {
			t.Errorf("expected context category to gate the candidate list, got %q", cat)
		}
		return []domprod.Product{
			catalogProduct(t, "blue-dress", "Blue Dress", "clothing", nil),
		}, 1, nil
	}

	var byVectorCalled bool
	f.retriever.byVectorFn = func(_ context.Context, _ string, _ category.Canonical, embedding []float32) ([]domain.Neighbor, error) {
		byVectorCalled = true
		if len(embedding) != 2 || embedding[0] != 0.5 {
			t.Errorf("expected centroid embedding, got %v", embedding)
		}
		return []domain.Neighbor{{ProductID: "blue-dress", Similarity: 0.8}}, nil
	}
	f.retriever.byTextFn = func(_ context.Context, _ string, _ category.Canonical, _ string) ([]domain.Neighbor, error) {
		t.Fatal("expected the centroid path, not a fresh text embedding")
		return nil, nil
	}

	var storedText string
	f.tracker.updateFn = func(_ context.Context, _ domsess.Context, queryText string, _ category.Canonical, _ []string) error {
		storedText = queryText
		return nil
	}

	got, err := f.svc.Search(context.Background(), mustQuery(t, "show me similar", "", "sess-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !byVectorCalled {
		t.Fatal("expected retrieval by stored centroid")
	}
	if !got.Anaphoric {
		t.Error("expected result marked anaphoric")
	}
	// The trigger phrase itself must not replace the remembered query text.
	if storedText != "red dress" {
		t.Errorf("expected context to keep 'red dress', got %q", storedText)
	}
}

func TestSearch_TenantIsolationBreachFailsRequest(t *testing.T) {
	f := newFixture(t)

	f.products.listFn = func(_ context.Context, _ string, _ category.Canonical, _, _ int) ([]domprod.Product, int, error) {
		return nil, 0, nil
	}
	f.retriever.byTextFn = func(_ context.Context, _ string, _ category.Canonical, _ string) ([]domain.Neighbor, error) {
		return []domain.Neighbor{{ProductID: "foreign", Similarity: 0.9}}, nil
	}
	f.products.getByIDsFn = func(_ context.Context, _ string, _ []string) ([]domprod.Product, error) {
		foreign := domprod.Reconstruct("foreign", "Foreign", "", "clothing",
			"clothing", 10, "", "tenant-b", nil)
		return []domprod.Product{foreign}, nil
	}

	_, err := f.svc.Search(context.Background(), mustQuery(t, "red dress", "", "sess-1"))
	if !errors.Is(err, domain.ErrTenantIsolation) {
		t.Fatalf("expected ErrTenantIsolation, got %v", err)
	}
}

func TestSearch_EmptyResultStillUpdatesContext(t *testing.T) {
	f := newFixture(t)

	var updated bool
	var updatedIDs []string
	f.tracker.updateFn = func(_ context.Context, _ domsess.Context, _ string, _ category.Canonical, resultIDs []string) error {
		updated = true
		updatedIDs = resultIDs
		return nil
	}

	got, err := f.svc.Search(context.Background(), mustQuery(t, "unicorn saddle", "", "sess-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Products) != 0 {
		t.Fatalf("expected empty results, got %v", resultIDs(got))
	}
	if !updated {
		t.Fatal("expected context update on empty result")
	}
	if len(updatedIDs) != 0 {
		t.Errorf("expected empty result ids, got %v", updatedIDs)
	}
}

func TestSearch_ContextUpdateFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)

	f.tracker.updateFn = func(_ context.Context, _ domsess.Context, _ string, _ category.Canonical, _ []string) error {
		return errors.New("store down")
	}

	if _, err := f.svc.Search(context.Background(), mustQuery(t, "red dress", "", "sess-1")); err != nil {
		t.Fatalf("context update failure must not fail the search: %v", err)
	}
}

func TestSearch_LimitTruncation(t *testing.T) {
	f := newFixture(t)

	f.products.listFn = func(_ context.Context, _ string, _ category.Canonical, _, _ int) ([]domprod.Product, int, error) {
		products := make([]domprod.Product, 0, 30)
		for i := 0; i < 30; i++ {
			products = append(products,
				catalogProduct(t, fmt.Sprintf("dress-%02d", i), "Red Dress", "clothing", nil))
		}
		return products, 30, nil
	}

	got, err := f.svc.Search(context.Background(), mustQueryWithLimit(t, "red dress", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Products) != 5 {
		t.Fatalf("expected 5 results, got %d", len(got.Products))
	}
}

func TestSearch_NoSessionSkipsContext(t *testing.T) {
	f := newFixture(t)

	f.tracker.loadFn = func(_ context.Context, _, _ string) (domsess.Context, error) {
		t.Fatal("load must not be called without a session")
		return domsess.Context{}, nil
	}
	f.tracker.updateFn = func(_ context.Context, _ domsess.Context, _ string, _ category.Canonical, _ []string) error {
		t.Fatal("update must not be called without a session")
		return nil
	}

	if _, err := f.svc.Search(context.Background(), mustQuery(t, "red dress", "", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	f := newFixture(t)

	f.products.listFn = func(_ context.Context, _ string, _ category.Canonical, _, _ int) ([]domprod.Product, int, error) {
		return []domprod.Product{
			catalogProduct(t, "a", "Red Dress", "clothing", nil),
			catalogProduct(t, "b", "Red Dress", "clothing", nil),
			catalogProduct(t, "c", "Red Dress", "clothing", nil),
		}, 3, nil
	}
	f.retriever.byTextFn = func(_ context.Context, _ string, _ category.Canonical, _ string) ([]domain.Neighbor, error) {
		return []domain.Neighbor{
			{ProductID: "a", Similarity: 0.5},
			{ProductID: "b", Similarity: 0.5},
			{ProductID: "c", Similarity: 0.5},
		}, nil
	}

	first, err := f.svc.Search(context.Background(), mustQuery(t, "red dress", "", "sess-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := f.svc.Search(context.Background(), mustQuery(t, "red dress", "", "sess-1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a, b := resultIDs(first), resultIDs(got)
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("ordering changed between identical searches: %v != %v", a, b)
			}
		}
	}
}
