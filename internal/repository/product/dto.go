package product

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/shoplens/searchd/internal/domain/category"
	domprod "github.com/shoplens/searchd/internal/domain/product"
)

// Hash field names. The canonical category and owner are TAG fields in the
// index so queries can pre-filter on them.
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldCanonical   = "canonical_category"
	fieldPrice       = "price"
	fieldImageURL    = "image_url"
	fieldOwnerID     = "owner_id"
	fieldVector      = "__vector"
)

// buildHashFields converts a domain Product into a flat map[string]string for HSET.
func buildHashFields(p *domprod.Product) map[string]string {
	m := map[string]string{
		fieldName:        p.Name(),
		fieldDescription: p.Description(),
		fieldCategory:    p.RawCategory(),
		fieldCanonical:   string(p.Category()),
		fieldPrice:       strconv.FormatFloat(p.Price(), 'f', -1, 64),
		fieldImageURL:    p.ImageURL(),
		fieldOwnerID:     p.OwnerID(),
	}
	if len(p.Embedding()) > 0 {
		m[fieldVector] = vectorToBytes(p.Embedding())
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Product.
func parseHashFields(id string, m map[string]string) domprod.Product {
	price, _ := strconv.ParseFloat(m[fieldPrice], 64)
	return domprod.Reconstruct(
		id,
		m[fieldName],
		m[fieldDescription],
		m[fieldCategory],
		category.Canonical(m[fieldCanonical]),
		price,
		m[fieldImageURL],
		m[fieldOwnerID],
		bytesToVector(m[fieldVector]),
	)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
