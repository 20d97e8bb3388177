// Package fusion combines lexical and vector scores into a final ranking.
package fusion

import (
	"sort"

	"github.com/shoplens/searchd/internal/domain/category"
	"github.com/shoplens/searchd/internal/domain/search/scored"
)

// Weights control the fused-score blend. They must sum to 1; config
// validation enforces this before the engine is constructed.
type Weights struct {
	Vector  float64
	Lexical float64
}

// DefaultWeights lean on the semantic signal.
func DefaultWeights() Weights {
	return Weights{Vector: 0.6, Lexical: 0.4}
}

// Engine ranks scored products. Stateless and safe for concurrent use.
type Engine struct {
	w Weights
}

// New creates an Engine. Non-positive weights fall back to defaults.
func New(w Weights) *Engine {
	if w.Vector <= 0 || w.Lexical <= 0 {
		w = DefaultWeights()
	}
	return &Engine{w: w}
}

// Rank applies the category gate, fuses scores, filters by minScore and
// sorts descending. The gate runs before fusion: a candidate outside the
// requested category is dropped no matter how well it scored.
//
// degraded switches to lexical-only ranking: the fused score is exactly
// the lexical score and vector scores are ignored even if present.
func (e *Engine) Rank(
	candidates []scored.Product,
	gate category.Canonical,
	minScore float64,
	degraded bool,
) []scored.Product {
	ranked := make([]scored.Product, 0, len(candidates))

	for _, c := range candidates {
		p := c.Product()
		if gate != "" && p.Category() != gate {
			continue
		}

		var fused float64
		if degraded {
			fused = c.LexicalScore()
		} else {
			// A candidate absent from the neighbor set carries a zero
			// vector score; only full degradation switches the formula.
			fused = e.w.Vector*c.VectorScore() + e.w.Lexical*c.LexicalScore()
		}
		if fused > 1 {
			fused = 1
		}

		if fused < minScore {
			continue
		}
		ranked = append(ranked, c.WithFused(fused))
	}

	// Stable sort keeps insertion order as the final tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.FusedScore() != b.FusedScore() {
			return a.FusedScore() > b.FusedScore()
		}
		if a.VectorScore() != b.VectorScore() {
			return a.VectorScore() > b.VectorScore()
		}
		return len(a.MatchedFields()) > len(b.MatchedFields())
	})

	return ranked
}
