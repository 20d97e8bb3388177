package db

// TagFilter restricts a search to documents whose tag field holds the value.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search.
// Tags are applied as a pre-filter inside the index query, so excluded
// documents never enter the candidate set.
type KNNQuery struct {
	IndexName    string
	Tags         []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// ListQuery is the input for a filtered enumeration over an FT index.
type ListQuery struct {
	IndexName    string
	Tags         []TagFilter
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// For KNN queries Score is the raw cosine distance reported by the index.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
