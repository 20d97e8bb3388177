// Package lexical scores products against query text using exact and
// partial token overlap across the name, category and description fields.
package lexical

import (
	"strings"
	"unicode"

	"github.com/shoplens/searchd/internal/domain/product"
)

// Weights control the per-field contribution and the partial-match discount.
// Fields sum to at most 1; the final score is clamped to [0,1] regardless.
type Weights struct {
	Name            float64
	Category        float64
	Description     float64
	PartialDiscount float64
}

// DefaultWeights favor the product name over category over description.
func DefaultWeights() Weights {
	return Weights{
		Name:            0.5,
		Category:        0.3,
		Description:     0.2,
		PartialDiscount: 0.5,
	}
}

// Scorer computes lexical relevance scores. Stateless and safe for
// concurrent use.
type Scorer struct {
	w Weights
}

// New creates a Scorer. Zero or negative weight fields fall back to defaults.
func New(w Weights) *Scorer {
	def := DefaultWeights()
	if w.Name <= 0 {
		w.Name = def.Name
	}
	if w.Category <= 0 {
		w.Category = def.Category
	}
	if w.Description <= 0 {
		w.Description = def.Description
	}
	if w.PartialDiscount <= 0 || w.PartialDiscount >= 1 {
		w.PartialDiscount = def.PartialDiscount
	}
	return &Scorer{w: w}
}

// Score returns the lexical score in [0,1] for the product against the query
// text, plus the list of fields that contributed a non-zero match. The same
// inputs always produce the same outputs.
func (s *Scorer) Score(queryText string, p *product.Product) (float64, []string) {
	queryTokens := Tokenize(queryText)
	if len(queryTokens) == 0 {
		return 0, nil
	}

	fields := []struct {
		name   string
		weight float64
		tokens []string
	}{
		{"name", s.w.Name, Tokenize(p.Name())},
		{"category", s.w.Category, Tokenize(string(p.Category()))},
		{"description", s.w.Description, Tokenize(p.Description())},
	}

	var total float64
	var matched []string
	for _, f := range fields {
		cov := s.coverage(queryTokens, f.tokens)
		if cov > 0 {
			total += f.weight * cov
			matched = append(matched, f.name)
		}
	}

	if total > 1 {
		total = 1
	}
	return total, matched
}

// coverage is the mean per-query-token credit against the field tokens.
// An exact token match earns full credit, a substring overlap earns the
// partial discount, and each query token counts its best match only.
func (s *Scorer) coverage(queryTokens, fieldTokens []string) float64 {
	if len(fieldTokens) == 0 {
		return 0
	}

	var sum float64
	for _, qt := range queryTokens {
		best := 0.0
		for _, ft := range fieldTokens {
			switch {
			case qt == ft:
				best = 1.0
			case best < s.w.PartialDiscount &&
				len(qt) >= 3 && len(ft) >= 3 &&
				(strings.Contains(ft, qt) || strings.Contains(qt, ft)):
				best = s.w.PartialDiscount
			}
			if best == 1.0 {
				break
			}
		}
		sum += best
	}
	return sum / float64(len(queryTokens))
}

// Tokenize lowercases the text and splits it on any non-alphanumeric rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
