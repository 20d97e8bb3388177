package httpapi

import (
	domprod "github.com/shoplens/searchd/internal/domain/product"
	"github.com/shoplens/searchd/internal/domain/search/scored"
	searchuc "github.com/shoplens/searchd/internal/usecase/search"
)

// Error codes returned to API clients.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeProductNotFound   = "product_not_found"
	codeEmptyContext      = "empty_context"
	codeRevisionConflict  = "revision_conflict"
	codeEmbeddingProvider = "embedding_provider_error"
	codeInternalError     = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchRequest struct {
	Query     string  `json:"query"`
	Category  string  `json:"category,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
	Limit     int     `json:"limit,omitempty"`
	MinScore  float64 `json:"min_score,omitempty"`
}

type searchResultItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	ImageURL      string   `json:"image_url,omitempty"`
	FusedScore    float64  `json:"fused_score"`
	LexicalScore  float64  `json:"lexical_score"`
	VectorScore   *float64 `json:"vector_score,omitempty"`
	MatchedFields []string `json:"matched_fields,omitempty"`
}

type searchMetadata struct {
	Path      string `json:"path"`
	Degraded  bool   `json:"degraded"`
	Anaphoric bool   `json:"anaphoric"`
}

type searchResponse struct {
	Items     []searchResultItem `json:"items"`
	Count     int                `json:"count"`
	SessionID string             `json:"session_id"`
	Metadata  searchMetadata     `json:"metadata"`
}

type putProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
}

type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	RawCategory string  `json:"raw_category,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
}

type productListResponse struct {
	Items []productResponse `json:"items"`
	Total int               `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func productToDTO(p *domprod.Product) productResponse {
	resp := productResponse{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    string(p.Category()),
		Price:       p.Price(),
		ImageURL:    p.ImageURL(),
	}
	if p.RawCategory() != string(p.Category()) {
		resp.RawCategory = p.RawCategory()
	}
	return resp
}

func searchResultToDTO(s *scored.Product) searchResultItem {
	p := s.Product()
	item := searchResultItem{
		ID:            p.ID(),
		Name:          p.Name(),
		Description:   p.Description(),
		Category:      string(p.Category()),
		Price:         p.Price(),
		ImageURL:      p.ImageURL(),
		FusedScore:    s.FusedScore(),
		LexicalScore:  s.LexicalScore(),
		MatchedFields: s.MatchedFields(),
	}
	if s.HasVector() {
		v := s.VectorScore()
		item.VectorScore = &v
	}
	return item
}

func searchResultsToDTO(res searchuc.Results, sessionID string) searchResponse {
	items := make([]searchResultItem, len(res.Products))
	for i := range res.Products {
		items[i] = searchResultToDTO(&res.Products[i])
	}
	return searchResponse{
		Items:     items,
		Count:     len(items),
		SessionID: sessionID,
		Metadata: searchMetadata{
			Path:      res.Path,
			Degraded:  res.Degraded,
			Anaphoric: res.Anaphoric,
		},
	}
}
