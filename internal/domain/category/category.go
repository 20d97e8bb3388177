package category

import "strings"

// Canonical is a normalized category identifier. Two raw category strings that
// differ only in case or spelling variant map to the same Canonical value.
type Canonical string

// Uncategorized is the sentinel canonical id for empty or whitespace input.
const Uncategorized Canonical = "uncategorized"

// defaultSynonyms maps case-folded spelling variants to their canonical id.
// A broad term is NOT mapped to narrower ones: "electronics", "smartphones"
// and "laptops" stay distinct unless listed here explicitly.
var defaultSynonyms = map[string]string{
	"jewellery":   "jewelry",
	"jewelery":    "jewelry",
	"accessory":   "accessories",
	"apparel":     "clothing",
	"clothes":     "clothing",
	"foot wear":   "footwear",
	"shoes":       "footwear",
	"smart phone": "smartphones",
	"smartphone":  "smartphones",
	"cell phones": "smartphones",
	"laptop":      "laptops",
	"notebooks":   "laptops",
	"cosmetic":    "cosmetics",
	"make up":     "cosmetics",
	"makeup":      "cosmetics",
}

// Normalizer resolves raw category strings to canonical identifiers.
// Pure: no I/O, deterministic for a fixed synonym table.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer creates a normalizer from the built-in synonym table merged
// with deployment-specific extras (extras win on conflict).
func NewNormalizer(extra map[string]string) *Normalizer {
	merged := make(map[string]string, len(defaultSynonyms)+len(extra))
	for k, v := range defaultSynonyms {
		merged[fold(k)] = fold(v)
	}
	for k, v := range extra {
		merged[fold(k)] = fold(v)
	}
	return &Normalizer{synonyms: merged}
}

// Normalize maps a raw category string to its canonical id. Unknown categories
// pass through case-folded, so filtering by an unknown category yields zero
// matches instead of failing. Empty or whitespace input maps to Uncategorized.
// Idempotent: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) Canonical {
	folded := fold(raw)
	if folded == "" {
		return Uncategorized
	}
	if canon, ok := n.synonyms[folded]; ok {
		return Canonical(canon)
	}
	return Canonical(folded)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
