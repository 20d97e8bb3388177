// Package httpapi exposes the catalog and search services over a chi HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/search/query"
	"github.com/shoplens/searchd/internal/metrics"
	healthuc "github.com/shoplens/searchd/internal/usecase/health"
	productuc "github.com/shoplens/searchd/internal/usecase/product"
	searchuc "github.com/shoplens/searchd/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the use case services.
type Server struct {
	products      *productuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	products *productuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		products: products,
		search:   search,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		revisionConflictHandler,
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidProduct, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyContext, http.StatusUnprocessableEntity, codeEmptyContext),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes registers all API endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.Search)
	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", s.ListProducts)
		r.Put("/{id}", s.PutProduct)
		r.Get("/{id}", s.GetProduct)
		r.Delete("/{id}", s.DeleteProduct)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tenantID := TenantFromContext(r.Context())
	if tenantID == "" {
		writeError(w, http.StatusUnauthorized, codeBadRequest, "no tenant in request context")
		return
	}

	// A fresh session id starts a conversation; the client carries it forward
	// to make follow-up queries resolvable.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	q, err := query.New(req.Query, req.Category, req.ImageURL, tenantID, sessionID, req.Limit, req.MinScore)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.recordSearchOutcome(searchuc.Results{}, err)
		s.handleDomainError(w, err)
		return
	}
	s.recordSearchOutcome(results, nil)

	writeJSON(w, http.StatusOK, searchResultsToDTO(results, sessionID))
}

// recordSearchOutcome updates the search counters from one request outcome.
func (s *Server) recordSearchOutcome(res searchuc.Results, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrEmptyContext) {
			metrics.SearchAnaphoraTotal.WithLabelValues("empty_context").Inc()
		}
		metrics.SearchRequestsTotal.WithLabelValues("none", "error").Inc()
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues(res.Path, "ok").Inc()
	if res.Degraded {
		metrics.SearchDegradedTotal.Inc()
	}
	if res.Anaphoric {
		metrics.SearchAnaphoraTotal.WithLabelValues("resolved").Inc()
	}
}

// PutProduct handles PUT /v1/products/{id}.
func (s *Server) PutProduct(w http.ResponseWriter, r *http.Request) {
	var req putProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tenantID := TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	p, created, err := s.products.Put(r.Context(), tenantID, productuc.PutInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/v1/products/"+id)
	}
	writeJSON(w, status, productToDTO(&p))
}

// GetProduct handles GET /v1/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	tenantID := TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	p, err := s.products.Get(r.Context(), tenantID, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productToDTO(&p))
}

// DeleteProduct handles DELETE /v1/products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	tenantID := TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.products.Delete(r.Context(), tenantID, id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListProducts handles GET /v1/products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	tenantID := TenantFromContext(r.Context())

	offset := parseIntParam(r, "offset", 0)
	limit := parseIntParam(r, "limit", 20)
	if limit <= 0 || limit > 100 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be between 1 and 100")
		return
	}

	products, total, err := s.products.List(r.Context(), tenantID, r.URL.Query().Get("category"), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]productResponse, len(products))
	for i := range products {
		items[i] = productToDTO(&products[i])
	}

	writeJSON(w, http.StatusOK, productListResponse{Items: items, Total: total})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidProduct,
		domain.ErrEmptyContext,
		domain.ErrRevisionConflict,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// revisionConflictHandler handles ErrRevisionConflict with the current revision attached.
func revisionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrRevisionConflict) {
		return false
	}
	var rce *domain.RevisionConflictError
	if errors.As(err, &rce) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":             codeRevisionConflict,
			"message":          msg,
			"current_revision": rce.CurrentRevision,
		})
		return true
	}
	writeError(w, http.StatusConflict, codeRevisionConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
