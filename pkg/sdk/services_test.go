package searchd

import (
	"context"
	"errors"
	"testing"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
	"github.com/shoplens/searchd/internal/domain/search/query"
	"github.com/shoplens/searchd/internal/domain/search/scored"
	healthuc "github.com/shoplens/searchd/internal/usecase/health"
	productuc "github.com/shoplens/searchd/internal/usecase/product"
	searchuc "github.com/shoplens/searchd/internal/usecase/search"
)

func testProduct(id, name, cat string, price float64) domprod.Product {
	return domprod.Reconstruct(
		id, name, "", cat, category.Canonical(cat), price, "", "tenant-test", nil,
	)
}

func TestProductService_Put_ConvertsInput(t *testing.T) {
	var gotTenant string
	var gotInput productuc.PutInput
	mock := &mockProductUC{
		putFn: func(_ context.Context, tenantID string, in productuc.PutInput) (domprod.Product, bool, error) {
			gotTenant = tenantID
			gotInput = in
			return testProduct(in.ID, in.Name, in.Category, in.Price), true, nil
		},
	}
	client := testClient(mock, nil, nil)

	created, err := client.Products().Put(context.Background(), Product{
		ID:       "sku-1",
		Name:     "Red Dress",
		Category: "clothing",
		Price:    59.90,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if gotTenant != "tenant-test" {
		t.Errorf("tenant: got %q", gotTenant)
	}
	if gotInput.ID != "sku-1" || gotInput.Name != "Red Dress" || gotInput.Price != 59.90 {
		t.Errorf("input not converted: %+v", gotInput)
	}
}

func TestProductService_Get_MapsProduct(t *testing.T) {
	mock := &mockProductUC{
		getFn: func(_ context.Context, _, id string) (domprod.Product, error) {
			return testProduct(id, "Blue Shirt", "clothing", 29.90), nil
		},
	}
	client := testClient(mock, nil, nil)

	p, err := client.Products().Get(context.Background(), "sku-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.ID != "sku-2" || p.Name != "Blue Shirt" || p.Category != "clothing" {
		t.Errorf("product not mapped: %+v", p)
	}
}

func TestProductService_Get_NotFoundPassesThrough(t *testing.T) {
	mock := &mockProductUC{
		getFn: func(_ context.Context, _, _ string) (domprod.Product, error) {
			return domprod.Product{}, domain.ErrProductNotFound
		},
	}
	client := testClient(mock, nil, nil)

	_, err := client.Products().Get(context.Background(), "missing")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_List_MapsPage(t *testing.T) {
	mock := &mockProductUC{
		listFn: func(_ context.Context, _, rawCategory string, offset, limit int) ([]domprod.Product, int, error) {
			if rawCategory != "Jewellery" || offset != 10 || limit != 5 {
				t.Errorf("args not forwarded: %s %d %d", rawCategory, offset, limit)
			}
			return []domprod.Product{
				testProduct("p1", "Silver Ring", "jewelry", 120),
			}, 42, nil
		},
	}
	client := testClient(mock, nil, nil)

	res, err := client.Products().List(context.Background(), "Jewellery", 10, 5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 42 || len(res.Products) != 1 || res.Products[0].ID != "p1" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestProductService_Delete(t *testing.T) {
	var gotID string
	mock := &mockProductUC{
		deleteFn: func(_ context.Context, _, id string) error {
			gotID = id
			return nil
		},
	}
	client := testClient(mock, nil, nil)

	if err := client.Products().Delete(context.Background(), "sku-3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotID != "sku-3" {
		t.Errorf("id: got %q", gotID)
	}
}

func TestSearch_MapsResults(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(_ context.Context, q *query.Query) (searchuc.Results, error) {
			if q.TenantID() != "tenant-test" {
				t.Errorf("tenant: got %q", q.TenantID())
			}
			hit := scored.New(
				testProduct("p1", "Red Dress", "clothing", 59.90),
				0.8, 0.9, true, []string{"name"},
			).WithFused(0.86)
			return searchuc.Results{
				Products: []scored.Product{hit},
				Path:     searchuc.PathFused,
			}, nil
		},
	}
	client := testClient(nil, mock, nil)

	resp, err := client.Search(context.Background(), SearchQuery{Query: "red dress"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	r := resp.Results[0]
	if r.ID != "p1" || r.FusedScore != 0.86 || !r.HasVector {
		t.Errorf("result not mapped: %+v", r)
	}
	if resp.Path != "fused" || resp.Degraded {
		t.Errorf("metadata not mapped: %+v", resp)
	}
}

func TestSearch_DegradedMetadata(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(_ context.Context, _ *query.Query) (searchuc.Results, error) {
			return searchuc.Results{Path: searchuc.PathLexicalOnly, Degraded: true}, nil
		},
	}
	client := testClient(nil, mock, nil)

	resp, err := client.Search(context.Background(), SearchQuery{Query: "anything"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Path != "lexical_only" || !resp.Degraded {
		t.Errorf("expected degraded lexical_only, got %+v", resp)
	}
}

func TestSearch_InvalidQueryRejectedLocally(t *testing.T) {
	client := testClient(nil, &mockSearchUC{
		searchFn: func(_ context.Context, _ *query.Query) (searchuc.Results, error) {
			t.Fatal("search must not be called for an invalid query")
			return searchuc.Results{}, nil
		},
	}, nil)

	_, err := client.Search(context.Background(), SearchQuery{})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSearch_EmptyContextPassesThrough(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(_ context.Context, _ *query.Query) (searchuc.Results, error) {
			return searchuc.Results{}, domain.ErrEmptyContext
		},
	}
	client := testClient(nil, mock, nil)

	_, err := client.Search(context.Background(), SearchQuery{
		Query:     "show me similar",
		SessionID: "sess-1",
	})
	if !errors.Is(err, ErrEmptyContext) {
		t.Errorf("expected ErrEmptyContext, got %v", err)
	}
}

func TestHealth_MapsReport(t *testing.T) {
	mock := &mockHealthUC{
		checkFn: func(_ context.Context) healthuc.Report {
			return healthuc.Report{
				Status: healthuc.Degraded,
				Checks: map[string]healthuc.CheckResult{
					"database":  healthuc.CheckOK,
					"embedding": healthuc.CheckError,
				},
			}
		},
	}
	client := testClient(nil, nil, mock)

	status := client.Health(context.Background())
	if status.Status != "degraded" {
		t.Errorf("status: got %q", status.Status)
	}
	if status.Checks["database"] != "ok" || status.Checks["embedding"] != "error" {
		t.Errorf("checks not mapped: %+v", status.Checks)
	}
}
