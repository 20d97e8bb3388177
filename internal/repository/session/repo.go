// Package session persists conversation context as JSON values with an
// optimistic-lock revision enforced by the store's compare-and-swap.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shoplens/searchd/internal/db"
	"github.com/shoplens/searchd/internal/domain"
	domsess "github.com/shoplens/searchd/internal/domain/session"
)

// store is the consumer interface for session persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	CompareAndSwap(ctx context.Context, key string, value []byte, expectedRevision int64, ttl time.Duration) error
}

// Repo implements session context persistence over the db facade.
type Repo struct {
	store     store
	keyPrefix string
	ttl       time.Duration
}

// New creates a session repository. ttl of zero keeps contexts forever.
func New(s store, keyPrefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, ttl: ttl}
}

// Get loads the context for a session. A session never seen before yields
// the empty context, not an error.
func (r *Repo) Get(ctx context.Context, tenantID, sessionID string) (domsess.Context, error) {
	key := r.key(tenantID, sessionID)

	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsess.New(sessionID, tenantID), nil
		}
		return domsess.Context{}, fmt.Errorf("get %s: %w", key, err)
	}

	var dto contextDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return domsess.Context{}, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return fromDTO(dto), nil
}

// Put overwrites the context, requiring that the stored revision still
// equals the one the caller read. A concurrent overwrite surfaces as
// ErrRevisionConflict so the caller can re-read and retry.
func (r *Repo) Put(ctx context.Context, c *domsess.Context) error {
	key := r.key(c.TenantID(), c.SessionID())

	data, err := json.Marshal(toDTO(c))
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}

	err = r.store.CompareAndSwap(ctx, key, data, int64(c.Revision()-1), r.ttl)
	if err != nil {
		if errors.Is(err, db.ErrRevisionMismatch) {
			return domain.NewRevisionConflict(c.Revision() - 1)
		}
		return fmt.Errorf("cas %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(tenantID, sessionID string) string {
	return fmt.Sprintf("%ssession:%s:%s", r.keyPrefix, tenantID, sessionID)
}
