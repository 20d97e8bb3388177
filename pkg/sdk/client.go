package searchd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoplens/searchd/internal/config"
	"github.com/shoplens/searchd/internal/db"
	dbRedis "github.com/shoplens/searchd/internal/db/redis"
	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
	"github.com/shoplens/searchd/internal/domain/search/query"
	productrepo "github.com/shoplens/searchd/internal/repository/product"
	sessionrepo "github.com/shoplens/searchd/internal/repository/session"
	vectorrepo "github.com/shoplens/searchd/internal/repository/vector"
	"github.com/shoplens/searchd/internal/usecase/convctx"
	"github.com/shoplens/searchd/internal/usecase/fusion"
	healthuc "github.com/shoplens/searchd/internal/usecase/health"
	"github.com/shoplens/searchd/internal/usecase/lexical"
	productuc "github.com/shoplens/searchd/internal/usecase/product"
	searchuc "github.com/shoplens/searchd/internal/usecase/search"
	vectoruc "github.com/shoplens/searchd/internal/usecase/vector"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDim        = 1536
	defaultTopK             = 50
	defaultVectorTimeout    = 5 * time.Second
)

// Internal interfaces so tests can substitute the use case services.
type productUseCase interface {
	Put(ctx context.Context, tenantID string, in productuc.PutInput) (domprod.Product, bool, error)
	Get(ctx context.Context, tenantID, id string) (domprod.Product, error)
	List(ctx context.Context, tenantID, rawCategory string, offset, limit int) ([]domprod.Product, int, error)
	Delete(ctx context.Context, tenantID, id string) error
	Count(ctx context.Context, tenantID string) (int, error)
}

type searchUseCase interface {
	Search(ctx context.Context, q *query.Query) (searchuc.Results, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the searchd SDK entry point, scoped to one tenant.
type Client struct {
	tenantID   string
	store      db.Store
	productSvc productUseCase
	searchSvc  searchUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a searchd Client and connects to the database.
// The provided context is used for the initial readiness check and index
// creation.
func New(ctx context.Context, tenantID string, opts ...Option) (*Client, error) {
	if tenantID == "" {
		return nil, errors.New("searchd: tenant ID required")
	}

	cfg := &clientConfig{
		keyPrefix:        "searchd:",
		vectorDimensions: defaultVectorDim,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("searchd: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("searchd: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchd: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, tenantID, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(
	ctx context.Context, tenantID string,
	store db.Store, cfg *clientConfig, obs *observer,
) (*Client, error) {
	productRepo := productrepo.New(store, cfg.keyPrefix, cfg.vectorDimensions)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		productRepo = productRepo.WithHNSW(productrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}
	if err := productRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("searchd: ensure index: %w", err)
	}
	vectorRepo := vectorrepo.New(store, cfg.keyPrefix)
	sessionRepo := sessionrepo.New(store, cfg.keyPrefix, cfg.sessionTTL)

	// Embedder: noop when not configured. Ingestion fails, search degrades
	// to lexical-only.
	var domEmb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	triggers := cfg.anaphoraTriggers
	if len(triggers) == 0 {
		triggers = config.DefaultAnaphoraTriggers
	}
	normalizer := category.NewNormalizer(cfg.categorySynonyms)

	tracker := convctx.New(sessionRepo, productRepo, triggers)
	retriever := vectoruc.New(vectorRepo, domEmb, defaultTopK, defaultVectorTimeout)
	scorer := lexical.New(lexical.DefaultWeights())
	ranker := fusion.New(fusion.DefaultWeights())

	searchSvc := searchuc.New(
		productRepo, retriever, tracker, scorer, ranker, normalizer, 0, zap.NewNop(),
	)
	productSvc := productuc.New(productRepo, domEmb, normalizer)
	healthSvc := healthuc.New(store, nil)

	return &Client{
		tenantID:   tenantID,
		store:      store,
		productSvc: productSvc,
		searchSvc:  searchSvc,
		healthSvc:  healthSvc,
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Products returns the catalog management service.
func (c *Client) Products() *ProductService {
	return &ProductService{tenantID: c.tenantID, svc: c.productSvc, obs: c.obs}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"searchd: embedder not configured (use WithEmbedder)",
	)
}
