package searchd

// Product is a catalog entry for ingestion and reads.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       float64
	ImageURL    string
}

// SearchQuery describes one search request.
// Either Query or ImageURL is required. SessionID links consecutive queries
// into a conversation; leave it empty for one-shot searches.
type SearchQuery struct {
	Query     string
	Category  string
	ImageURL  string
	SessionID string
	Limit     int
	MinScore  float64
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	Product
	FusedScore    float64
	LexicalScore  float64
	VectorScore   float64
	HasVector     bool
	MatchedFields []string
}

// SearchResponse is the ranked outcome of one search.
type SearchResponse struct {
	Results []SearchResult
	// Path is "fused" or "lexical_only".
	Path      string
	Degraded  bool
	Anaphoric bool
}

// ListResult is a paginated slice of the catalog.
type ListResult struct {
	Products []Product
	Total    int
}
