package session

import (
	"time"

	"github.com/shoplens/searchd/internal/domain/category"
	domsess "github.com/shoplens/searchd/internal/domain/session"
)

// contextDTO is the stored JSON shape. The revision field doubles as the
// compare-and-swap token checked server-side on every write.
type contextDTO struct {
	SessionID     string    `json:"session_id"`
	TenantID      string    `json:"tenant_id"`
	LastQueryText string    `json:"last_query_text,omitempty"`
	LastCategory  string    `json:"last_category,omitempty"`
	LastResultIDs []string  `json:"last_result_ids,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
	Revision      int       `json:"revision"`
}

func toDTO(c *domsess.Context) contextDTO {
	return contextDTO{
		SessionID:     c.SessionID(),
		TenantID:      c.TenantID(),
		LastQueryText: c.LastQueryText(),
		LastCategory:  string(c.LastCategory()),
		LastResultIDs: c.LastResultIDs(),
		UpdatedAt:     c.UpdatedAt(),
		Revision:      c.Revision(),
	}
}

func fromDTO(d contextDTO) domsess.Context {
	return domsess.Reconstruct(
		d.SessionID,
		d.TenantID,
		d.LastQueryText,
		category.Canonical(d.LastCategory),
		d.LastResultIDs,
		d.UpdatedAt,
		d.Revision,
	)
}
