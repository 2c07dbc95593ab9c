package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSKUFilter_NoFalseNegatives(t *testing.T) {
	products := testProducts()
	f := NewSKUFilter(products)

	for _, p := range products {
		assert.True(t, f.MayHave(p.SKU), "sku %s", p.SKU)
	}
}

func TestSKUFilter_CaseInsensitive(t *testing.T) {
	f := NewSKUFilter(testProducts())

	assert.True(t, f.MayHave("bot-001"))
	assert.True(t, f.MayHave("Bot-001"))
}

func TestSKUFilter_EmptyCatalog(t *testing.T) {
	f := NewSKUFilter(nil)

	assert.False(t, f.MayHave("ANY-001"))
}
