// Package product persists catalog products as hashes behind an FT index.
// Keys embed the owning tenant, and every index query repeats the owner as
// a tag filter, so cross-tenant reads cannot happen at this layer.
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoplens/searchd/internal/db"
	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
)

// store is the consumer interface for product persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, tags []db.TagFilter) (int, error)
}

// HNSWConfig tunes the vector field of the product index.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements product persistence over the db facade.
type Repo struct {
	store     store
	keyPrefix string
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a product repository.
func New(s store, keyPrefix string, vectorDim int) *Repo {
	return &Repo{
		store:     s,
		keyPrefix: keyPrefix,
		vectorDim: vectorDim,
		hnsw:      HNSWConfig{M: 32, EFConstruct: 400},
	}
}

// WithHNSW overrides the HNSW parameters used at index creation.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the product FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.IndexName()).
		Prefix(r.keyPrefix+"product:").
		Tag(fieldOwnerID).
		Tag(fieldCanonical).
		Numeric(fieldPrice).
		VectorHNSW(fieldVector, r.vectorDim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert creates or updates a product. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domprod.Product) (bool, error) {
	key := r.key(p.OwnerID(), p.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(p)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	return !exists, nil
}

// Get returns a product by id within the tenant.
func (r *Repo) Get(ctx context.Context, tenantID, id string) (domprod.Product, error) {
	key := r.key(tenantID, id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprod.Product{}, domain.ErrProductNotFound
		}
		return domprod.Product{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return domprod.Product{}, domain.ErrProductNotFound
	}
	return parseHashFields(id, fields), nil
}

// GetByIDs returns the products for the given ids, preserving the input
// order. Ids missing from storage are skipped silently.
func (r *Repo) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]domprod.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(tenantID, id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	products := make([]domprod.Product, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		products = append(products, parseHashFields(ids[i], m))
	}
	return products, nil
}

// List enumerates the tenant's products, optionally narrowed to a canonical
// category, paginated by offset.
func (r *Repo) List(
	ctx context.Context, tenantID string, cat category.Canonical, offset, limit int,
) ([]domprod.Product, int, error) {
	if limit <= 0 {
		limit = 20
	}

	tags := []db.TagFilter{{Field: fieldOwnerID, Value: tenantID}}
	if cat != "" {
		tags = append(tags, db.TagFilter{Field: fieldCanonical, Value: string(cat)})
	}

	result, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName: r.IndexName(),
		Tags:      tags,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search list: %w", err)
	}
	if result == nil || result.Total == 0 {
		return nil, 0, nil
	}

	products := make([]domprod.Product, 0, len(result.Entries))
	for _, entry := range result.Entries {
		products = append(products, parseHashFields(r.extractID(entry.Key, tenantID), entry.Fields))
	}
	return products, result.Total, nil
}

// Count returns the number of products owned by the tenant.
func (r *Repo) Count(ctx context.Context, tenantID string) (int, error) {
	n, err := r.store.SearchCount(ctx, r.IndexName(), []db.TagFilter{
		{Field: fieldOwnerID, Value: tenantID},
	})
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// Delete removes a product.
func (r *Repo) Delete(ctx context.Context, tenantID, id string) error {
	key := r.key(tenantID, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// IndexName returns the FT index name covering product hashes.
func (r *Repo) IndexName() string {
	return r.keyPrefix + "products:idx"
}

func (r *Repo) key(tenantID, id string) string {
	return fmt.Sprintf("%sproduct:%s:%s", r.keyPrefix, tenantID, id)
}

func (r *Repo) extractID(key, tenantID string) string {
	prefix := fmt.Sprintf("%sproduct:%s:", r.keyPrefix, tenantID)
	if len(key) > len(prefix) {
		return key[len(prefix):]
	}
	return key
}
