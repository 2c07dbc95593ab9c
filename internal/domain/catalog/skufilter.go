package catalog

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

const skuFilterFPR = 0.001

// SKUFilter answers "is this SKU definitely not in the catalog?" without a
// repository round trip. False positives are possible (the caller still
// performs the real lookup); false negatives are not.
type SKUFilter struct {
	filter *bloom.BloomFilter
}

// NewSKUFilter builds a filter over the SKUs of the given products.
func NewSKUFilter(products []Product) *SKUFilter {
	n := uint(len(products))
	if n == 0 {
		n = 1
	}
	f := bloom.NewWithEstimates(n, skuFilterFPR)
	for _, p := range products {
		f.AddString(strings.ToUpper(p.SKU))
	}
	return &SKUFilter{filter: f}
}

// MayHave reports whether sku might be in the catalog. SKU matching is
// case-insensitive.
func (s *SKUFilter) MayHave(sku string) bool {
	return s.filter.TestString(strings.ToUpper(sku))
}
