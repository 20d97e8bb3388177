package searchd

import (
	"context"

	domprod "github.com/shoplens/searchd/internal/domain/product"
	"github.com/shoplens/searchd/internal/domain/search/query"
	healthuc "github.com/shoplens/searchd/internal/usecase/health"
	productuc "github.com/shoplens/searchd/internal/usecase/product"
	searchuc "github.com/shoplens/searchd/internal/usecase/search"
)

// --- productUseCase mock ---

type mockProductUC struct {
	putFn    func(ctx context.Context, tenantID string, in productuc.PutInput) (domprod.Product, bool, error)
	getFn    func(ctx context.Context, tenantID, id string) (domprod.Product, error)
	listFn   func(ctx context.Context, tenantID, rawCategory string, offset, limit int) ([]domprod.Product, int, error)
	deleteFn func(ctx context.Context, tenantID, id string) error
	countFn  func(ctx context.Context, tenantID string) (int, error)
}

func (m *mockProductUC) Put(
	ctx context.Context, tenantID string, in productuc.PutInput,
) (domprod.Product, bool, error) {
	return m.putFn(ctx, tenantID, in)
}

func (m *mockProductUC) Get(ctx context.Context, tenantID, id string) (domprod.Product, error) {
	return m.getFn(ctx, tenantID, id)
}

func (m *mockProductUC) List(
	ctx context.Context, tenantID, rawCategory string, offset, limit int,
) ([]domprod.Product, int, error) {
	return m.listFn(ctx, tenantID, rawCategory, offset, limit)
}

func (m *mockProductUC) Delete(ctx context.Context, tenantID, id string) error {
	return m.deleteFn(ctx, tenantID, id)
}

func (m *mockProductUC) Count(ctx context.Context, tenantID string) (int, error) {
	return m.countFn(ctx, tenantID)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, q *query.Query) (searchuc.Results, error)
}

func (m *mockSearchUC) Search(ctx context.Context, q *query.Query) (searchuc.Results, error) {
	return m.searchFn(ctx, q)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

// --- helpers ---

func testClient(
	productSvc productUseCase,
	searchSvc searchUseCase,
	healthSvc healthUseCase,
) *Client {
	return &Client{
		tenantID:   "tenant-test",
		productSvc: productSvc,
		searchSvc:  searchSvc,
		healthSvc:  healthSvc,
	}
}
