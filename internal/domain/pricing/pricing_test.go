package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoshop/storefront/internal/domain/catalog"
)

func tieredProduct() catalog.Product {
	return catalog.Product{
		ID:        1,
		Name:      "Lanyard",
		SKU:       "LAN-001",
		BasePrice: 1000,
		Stock:     500,
		PriceBreaks: []catalog.PriceBreak{
			{MinQty: 1, Price: 1000},
			{MinQty: 10, Price: 900},
			{MinQty: 50, Price: 800},
		},
	}
}

func TestResolveBreak(t *testing.T) {
	breaks := []catalog.PriceBreak{
		{MinQty: 10, Price: 900},
		{MinQty: 50, Price: 800},
		{MinQty: 1, Price: 1000},
	}

	tests := []struct {
		name       string
		qty        int
		wantMinQty int
	}{
		{name: "qualifies for lowest tier", qty: 1, wantMinQty: 1},
		{name: "just below second tier", qty: 9, wantMinQty: 1},
		{name: "exactly at second tier", qty: 10, wantMinQty: 10},
		{name: "between second and third", qty: 49, wantMinQty: 10},
		{name: "exactly at third tier", qty: 50, wantMinQty: 50},
		{name: "far above all tiers", qty: 10000, wantMinQty: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ResolveBreak(breaks, tt.qty)
			require.NotNil(t, b)
			assert.Equal(t, tt.wantMinQty, b.MinQty)
		})
	}
}

func TestResolveBreak_Empty(t *testing.T) {
	assert.Nil(t, ResolveBreak(nil, 5))
	assert.Nil(t, ResolveBreak([]catalog.PriceBreak{}, 5))
}

func TestResolveBreak_BelowAllThresholds(t *testing.T) {
	breaks := []catalog.PriceBreak{
		{MinQty: 50, Price: 800},
		{MinQty: 10, Price: 900},
	}

	// The smallest tier comes back as a display reference even though the
	// quantity does not qualify for it.
	b := ResolveBreak(breaks, 3)
	require.NotNil(t, b)
	assert.Equal(t, 10, b.MinQty)
}

func TestUnitPrice_TierSelection(t *testing.T) {
	p := tieredProduct()

	tests := []struct {
		qty  int
		want int64
	}{
		{qty: 9, want: 1000},
		{qty: 10, want: 900},
		{qty: 49, want: 900},
		{qty: 50, want: 800},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UnitPrice(p, tt.qty), "qty=%d", tt.qty)
	}
}

func TestUnitPrice_NoBreaks(t *testing.T) {
	p := catalog.Product{BasePrice: 750, Stock: 10}

	for _, qty := range []int{1, 5, 100} {
		assert.Equal(t, int64(750), UnitPrice(p, qty))
	}
	assert.True(t, DiscountPercent(p, 5).IsZero())
}

func TestUnitPrice_BelowAllThresholdsUsesBasePrice(t *testing.T) {
	p := catalog.Product{
		BasePrice: 1000,
		Stock:     100,
		PriceBreaks: []catalog.PriceBreak{
			{MinQty: 10, Price: 900},
			{MinQty: 50, Price: 800},
		},
	}

	// Below every threshold the base price applies; the fallback break from
	// ResolveBreak must never discount an unqualified quantity.
	assert.Equal(t, int64(1000), UnitPrice(p, 5))
	assert.True(t, DiscountPercent(p, 5).IsZero())
}

func TestLineTotal(t *testing.T) {
	p := tieredProduct()

	assert.Equal(t, int64(9000), LineTotal(p, 9))
	assert.Equal(t, int64(9000), LineTotal(p, 10))
	assert.Equal(t, int64(40000), LineTotal(p, 50))
}

func TestDiscountPercent(t *testing.T) {
	p := tieredProduct()

	// 10 units: base 10000 vs line 9000 -> 10%.
	assert.True(t, decimal.NewFromInt(10).Equal(DiscountPercent(p, 10)),
		"got %s", DiscountPercent(p, 10))

	// 50 units: base 50000 vs line 40000 -> 20%.
	assert.True(t, decimal.NewFromInt(20).Equal(DiscountPercent(p, 50)),
		"got %s", DiscountPercent(p, 50))

	// Below all thresholds there is no discount.
	assert.True(t, DiscountPercent(p, 9).IsZero())
}

func TestDiscountPercent_ZeroBaseTotal(t *testing.T) {
	p := catalog.Product{
		BasePrice:   0,
		Stock:       10,
		PriceBreaks: []catalog.PriceBreak{{MinQty: 1, Price: 100}},
	}

	assert.True(t, DiscountPercent(p, 5).IsZero())
}

func TestDiscountPercent_NegativeWhenBreakExceedsBase(t *testing.T) {
	// Malformed catalog data: the tier is more expensive than the base
	// price. The signed value is surfaced, not clamped.
	p := catalog.Product{
		BasePrice:   100,
		Stock:       100,
		PriceBreaks: []catalog.PriceBreak{{MinQty: 10, Price: 120}},
	}

	got := DiscountPercent(p, 10)
	assert.True(t, got.IsNegative(), "got %s", got)
	assert.True(t, decimal.NewFromInt(-20).Equal(got), "got %s", got)
}

func TestClampQuantity(t *testing.T) {
	p := catalog.Product{Stock: 5}

	tests := []struct {
		requested int
		want      int
	}{
		{requested: 100, want: 5},
		{requested: 5, want: 5},
		{requested: 3, want: 3},
		{requested: 1, want: 1},
		{requested: 0, want: 1},
		{requested: -7, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampQuantity(p, tt.requested), "requested=%d", tt.requested)
	}

	// Out-of-stock product still clamps to a quantity of one.
	assert.Equal(t, 1, ClampQuantity(catalog.Product{Stock: 0}, 10))
}
