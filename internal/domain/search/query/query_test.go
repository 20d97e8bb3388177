package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/shoplens/searchd/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	q, err := New("red dress", "Apparel", "", "tenant-a", "sess-1", 20, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "red dress" || q.TenantID() != "tenant-a" {
		t.Errorf("unexpected query: %+v", q)
	}
	if q.Limit() != 20 || q.MinScore() != 0.3 {
		t.Errorf("limit=%d minScore=%f", q.Limit(), q.MinScore())
	}
}

func TestNew_ImageOnly(t *testing.T) {
	q, err := New("", "", "https://img/ref.jpg", "tenant-a", "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ImageURL() != "https://img/ref.jpg" {
		t.Errorf("image = %q", q.ImageURL())
	}
}

func TestNew_RequiresTextOrImage(t *testing.T) {
	if _, err := New("", "", "", "tenant-a", "", 0, 0); err == nil {
		t.Fatal("expected error for empty text and image")
	}
}

func TestNew_RequiresTenant(t *testing.T) {
	if _, err := New("dress", "", "", "", "", 0, 0); err == nil {
		t.Fatal("expected error for empty tenant")
	}
}

func TestNew_TextTooLong(t *testing.T) {
	long := strings.Repeat("x", MaxTextLength+1)
	if _, err := New(long, "", "", "tenant-a", "", 0, 0); err == nil {
		t.Fatal("expected error for oversized text")
	}
}

func TestNew_ValidationWrapsInvalidQuery(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Query, error)
	}{
		{"no text or image", func() (Query, error) {
			return New("", "", "", "tenant-a", "", 0, 0)
		}},
		{"text too long", func() (Query, error) {
			return New(strings.Repeat("x", MaxTextLength+1), "", "", "tenant-a", "", 0, 0)
		}},
		{"empty tenant", func() (Query, error) {
			return New("dress", "", "", "", "", 0, 0)
		}},
		{"min_score out of range", func() (Query, error) {
			return New("dress", "", "", "tenant-a", "", 0, 1.5)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestNew_LimitDefaultsAndClamps(t *testing.T) {
	q, _ := New("dress", "", "", "tenant-a", "", 0, 0)
	if q.Limit() != DefaultLimit {
		t.Errorf("limit = %d, want default %d", q.Limit(), DefaultLimit)
	}

	q, _ = New("dress", "", "", "tenant-a", "", 5000, 0)
	if q.Limit() != MaxLimit {
		t.Errorf("limit = %d, want clamped %d", q.Limit(), MaxLimit)
	}
}

func TestNew_MinScoreBounds(t *testing.T) {
	if _, err := New("dress", "", "", "tenant-a", "", 0, -0.1); err == nil {
		t.Error("expected error for negative min_score")
	}
	if _, err := New("dress", "", "", "tenant-a", "", 0, 1.1); err == nil {
		t.Error("expected error for min_score above 1")
	}
	if _, err := New("dress", "", "", "tenant-a", "", 0, 1.0); err != nil {
		t.Errorf("min_score 1.0 must be accepted: %v", err)
	}
}
