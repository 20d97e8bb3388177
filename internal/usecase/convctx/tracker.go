// Package convctx resolves anaphoric follow-up queries ("show me similar")
// against per-session conversation state.
package convctx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shoplens/searchd/internal/domain"
	"github.com/shoplens/searchd/internal/domain/category"
	domsess "github.com/shoplens/searchd/internal/domain/session"
)

// putRetries bounds the read-modify-write loop on revision conflicts.
const putRetries = 3

// Resolved carries the effective query derived from conversation context.
// The embedding is the centroid of the previous result set; nil when none
// of the previous products carried a vector.
type Resolved struct {
	Text      string
	Category  category.Canonical
	Embedding []float32
}

// Tracker owns the anaphora trigger set and the session overwrite discipline.
type Tracker struct {
	sessions SessionStore
	products ProductReader
	triggers map[string]struct{}
	now      func() time.Time
}

// New creates a Tracker with the given trigger phrases.
func New(sessions SessionStore, products ProductReader, triggers []string) *Tracker {
	set := make(map[string]struct{}, len(triggers))
	for _, t := range triggers {
		set[normalizeTrigger(t)] = struct{}{}
	}
	return &Tracker{
		sessions: sessions,
		products: products,
		triggers: set,
		now:      time.Now,
	}
}

// IsAnaphoric reports whether the query text is one of the follow-up
// trigger phrases. Matching is exact after case folding and punctuation
// trimming; free text that merely contains a trigger is not a follow-up.
func (t *Tracker) IsAnaphoric(text string) bool {
	_, ok := t.triggers[normalizeTrigger(text)]
	return ok
}

// Load returns the stored context for the session, the empty context when
// the session has not been seen yet.
func (t *Tracker) Load(ctx context.Context, tenantID, sessionID string) (domsess.Context, error) {
	c, err := t.sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		return domsess.Context{}, fmt.Errorf("load session: %w", err)
	}
	return c, nil
}

// Resolve derives the effective query for an anaphoric follow-up from the
// session context. A session with no prior search, or whose last search
// returned nothing, yields ErrEmptyContext: there is nothing to be similar to.
func (t *Tracker) Resolve(ctx context.Context, c *domsess.Context) (Resolved, error) {
	if c.IsEmpty() || len(c.LastResultIDs()) == 0 {
		return Resolved{}, domain.ErrEmptyContext
	}

	products, err := t.products.GetByIDs(ctx, c.TenantID(), c.LastResultIDs())
	if err != nil {
		return Resolved{}, fmt.Errorf("load previous results: %w", err)
	}

	vectors := make([][]float32, 0, len(products))
	for i := range products {
		if emb := products[i].Embedding(); len(emb) > 0 {
			vectors = append(vectors, emb)
		}
	}

	return Resolved{
		Text:      c.LastQueryText(),
		Category:  c.LastCategory(),
		Embedding: domain.Centroid(vectors),
	}, nil
}

// Update overwrites the session with the latest search outcome. On a
// revision conflict the context is re-read and the overwrite retried, so
// the slower of two concurrent searches wins.
func (t *Tracker) Update(
	ctx context.Context, c domsess.Context,
	queryText string, cat category.Canonical, resultIDs []string,
) error {
	for attempt := 0; ; attempt++ {
		updated := c.Updated(queryText, cat, resultIDs, t.now().UTC())

		err := t.sessions.Put(ctx, &updated)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRevisionConflict) || attempt >= putRetries {
			return fmt.Errorf("store session: %w", err)
		}

		c, err = t.sessions.Get(ctx, c.TenantID(), c.SessionID())
		if err != nil {
			return fmt.Errorf("reload session: %w", err)
		}
	}
}

// normalizeTrigger lowercases and strips surrounding space and punctuation.
func normalizeTrigger(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return strings.Join(strings.Fields(text), " ")
}
