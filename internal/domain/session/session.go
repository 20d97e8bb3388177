package session

import (
	"time"

	"github.com/shoplens/searchd/internal/domain/category"
)

// Context is the per-conversation state read when resolving anaphoric
// follow-ups and overwritten after every search. Only the most recent
// query and result set are retained, so memory stays bounded regardless
// of conversation length.
type Context struct {
	sessionID     string
	tenantID      string
	lastQueryText string
	lastCategory  category.Canonical
	lastResultIDs []string
	updatedAt     time.Time
	revision      int
}

// New creates the initial (empty) context for a session.
func New(sessionID, tenantID string) Context {
	return Context{sessionID: sessionID, tenantID: tenantID}
}

// Reconstruct creates a Context from storage.
func Reconstruct(
	sessionID, tenantID, lastQueryText string,
	lastCategory category.Canonical,
	lastResultIDs []string,
	updatedAt time.Time,
	revision int,
) Context {
	return Context{
		sessionID:     sessionID,
		tenantID:      tenantID,
		lastQueryText: lastQueryText,
		lastCategory:  lastCategory,
		lastResultIDs: lastResultIDs,
		updatedAt:     updatedAt,
		revision:      revision,
	}
}

// SessionID returns the session identifier.
func (c *Context) SessionID() string { return c.sessionID }

// TenantID returns the owning tenant identifier.
func (c *Context) TenantID() string { return c.tenantID }

// LastQueryText returns the most recent non-anaphoric query text.
func (c *Context) LastQueryText() string { return c.lastQueryText }

// LastCategory returns the canonical category of the most recent search.
func (c *Context) LastCategory() category.Canonical { return c.lastCategory }

// LastResultIDs returns the ordered product ids of the most recent search.
func (c *Context) LastResultIDs() []string { return c.lastResultIDs }

// UpdatedAt returns the time of the last overwrite.
func (c *Context) UpdatedAt() time.Time { return c.updatedAt }

// Revision returns the optimistic-lock revision (0 for an unstored context).
func (c *Context) Revision() int { return c.revision }

// IsEmpty reports whether the session has seen no search yet (initial state).
func (c *Context) IsEmpty() bool { return c.revision == 0 }

// Updated returns a copy carrying the latest search outcome, with the
// revision bumped for the compare-and-swap write. Overwrite, not append.
func (c *Context) Updated(
	queryText string, cat category.Canonical, resultIDs []string, now time.Time,
) Context {
	return Context{
		sessionID:     c.sessionID,
		tenantID:      c.tenantID,
		lastQueryText: queryText,
		lastCategory:  cat,
		lastResultIDs: resultIDs,
		updatedAt:     now,
		revision:      c.revision + 1,
	}
}
