package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shoplens/searchd/internal/config"
	"github.com/shoplens/searchd/internal/db"
	dbRedis "github.com/shoplens/searchd/internal/db/redis"
	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	logpkg "github.com/shoplens/searchd/internal/logger"
	"github.com/shoplens/searchd/internal/metrics"
	"github.com/shoplens/searchd/internal/repository/embcache"
	productrepo "github.com/shoplens/searchd/internal/repository/product"
	sessionrepo "github.com/shoplens/searchd/internal/repository/session"
	vectorrepo "github.com/shoplens/searchd/internal/repository/vector"
	"github.com/shoplens/searchd/internal/transport/httpapi"
	openaiEmb "github.com/shoplens/searchd/internal/transport/openai"
	"github.com/shoplens/searchd/internal/usecase/convctx"
	"github.com/shoplens/searchd/internal/usecase/fusion"
	healthuc "github.com/shoplens/searchd/internal/usecase/health"
	"github.com/shoplens/searchd/internal/usecase/lexical"
	productuc "github.com/shoplens/searchd/internal/usecase/product"
	searchuc "github.com/shoplens/searchd/internal/usecase/search"
	vectoruc "github.com/shoplens/searchd/internal/usecase/vector"
	"github.com/shoplens/searchd/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Build embedder chain — composition root
	vecCfg := cfg.Embedding.Vectorizer
	docEmbedder := buildEmbedder(cfg, vecCfg.DocumentInstruction, store, logger)
	queryEmbedder := buildEmbedder(cfg, vecCfg.QueryInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider.Name),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
	)

	normalizer := category.NewNormalizer(cfg.Ranking.CategorySynonyms)

	// Create repositories
	productRepo := productrepo.New(store, cfg.Storage.KeyPrefix, vecCfg.Dimensions).
		WithHNSW(productrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
	if err := productRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}
	vectorRepo := vectorrepo.New(store, cfg.Storage.KeyPrefix)
	sessionRepo := sessionrepo.New(store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Session.TTLHours)*time.Hour)

	// Create use case services
	tracker := convctx.New(sessionRepo, productRepo, cfg.Ranking.AnaphoraTriggers)
	retriever := vectoruc.New(vectorRepo, queryEmbedder,
		cfg.Ranking.TopK, time.Duration(cfg.Ranking.VectorTimeoutSec)*time.Second)
	scorer := lexical.New(lexical.Weights{
		Name:            cfg.Ranking.Lexical.NameWeight,
		Category:        cfg.Ranking.Lexical.CategoryWeight,
		Description:     cfg.Ranking.Lexical.DescriptionWeight,
		PartialDiscount: cfg.Ranking.Lexical.PartialDiscount,
	})
	ranker := fusion.New(fusion.Weights{
		Vector:  cfg.Ranking.Fusion.VectorWeight,
		Lexical: cfg.Ranking.Fusion.LexicalWeight,
	})

	searchSvc := searchuc.New(
		productRepo, retriever, tracker, scorer, ranker, normalizer,
		cfg.Ranking.CandidateLimit, logger,
	)
	productSvc := productuc.New(productRepo, docEmbedder, normalizer)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(docEmbedder))

	// Create HTTP server
	server := httpapi.NewServer(productSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction
func buildEmbedder(
	cfg config.Config,
	instruction string,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.Provider.APIKey,
		BaseURL:    cfg.Embedding.Provider.BaseURL,
		Model:      cfg.Embedding.Vectorizer.Model,
		Dimensions: cfg.Embedding.Vectorizer.Dimensions,
		Provider:   cfg.Embedding.Provider.Name,
		Logger:     logger,
	})

	// Cached
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, cfg.Storage.KeyPrefix,
			cfg.Embedding.Vectorizer.Model, metrics.EmbeddingCacheTotal, logger)
	}

	// Instruction prefix (outermost — cache key includes instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
