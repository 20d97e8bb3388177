package convctx

import (
	"context"

	domprod "github.com/shoplens/searchd/internal/domain/product"
	domsess "github.com/shoplens/searchd/internal/domain/session"
)

// SessionStore reads and overwrites conversation contexts.
type SessionStore interface {
	Get(ctx context.Context, tenantID, sessionID string) (domsess.Context, error)
	Put(ctx context.Context, c *domsess.Context) error
}

// ProductReader loads the previous result set for centroid synthesis.
type ProductReader interface {
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]domprod.Product, error)
}
