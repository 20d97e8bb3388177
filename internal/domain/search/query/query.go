package query

import (
	"fmt"

	"github.com/shoplens/searchd/internal/domain"
)

// Search parameter limits.
const (
	MaxTextLength = 4096
	DefaultLimit  = 10
	MaxLimit      = 100
)

// Query is a validated search request. Transient: built per request, never
// persisted beyond the session's last-query slot.
type Query struct {
	text        string
	rawCategory string
	imageURL    string
	tenantID    string
	sessionID   string
	limit       int
	minScore    float64
}

// New validates and normalizes search parameters.
// Either text or an image reference is required. Limit defaults to 10 and is
// clamped to 100. minScore must be within [0,1].
func New(
	text, rawCategory, imageURL, tenantID, sessionID string,
	limit int, minScore float64,
) (Query, error) {
	if text == "" && imageURL == "" {
		return Query{}, fmt.Errorf("%w: query text or image is required", domain.ErrInvalidQuery)
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: query text too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if tenantID == "" {
		return Query{}, fmt.Errorf("%w: tenant ID is required", domain.ErrInvalidQuery)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if minScore < 0 || minScore > 1 {
		return Query{}, fmt.Errorf("%w: min_score must be between 0 and 1", domain.ErrInvalidQuery)
	}

	return Query{
		text:        text,
		rawCategory: rawCategory,
		imageURL:    imageURL,
		tenantID:    tenantID,
		sessionID:   sessionID,
		limit:       limit,
		minScore:    minScore,
	}, nil
}

// Text returns the free-text query.
func (q *Query) Text() string { return q.text }

// RawCategory returns the unnormalized category filter ("" means none).
func (q *Query) RawCategory() string { return q.rawCategory }

// ImageURL returns the image reference for image-modality queries.
func (q *Query) ImageURL() string { return q.imageURL }

// TenantID returns the requesting tenant.
func (q *Query) TenantID() string { return q.tenantID }

// SessionID returns the conversation session identifier.
func (q *Query) SessionID() string { return q.sessionID }

// Limit returns the maximum results to return.
func (q *Query) Limit() int { return q.limit }

// MinScore returns the fused-score cutoff.
func (q *Query) MinScore() float64 { return q.minScore }
