// Package pricing resolves volume-tier pricing for a (product, quantity)
// pair. All functions are pure and safe for concurrent use.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/promoshop/storefront/internal/domain/catalog"
)

var hundred = decimal.NewFromInt(100)

// ResolveBreak selects the applicable price break for qty: among all breaks
// with MinQty <= qty, the one with the largest MinQty. When qty is below
// every threshold, the break with the smallest MinQty is returned as a
// display reference only — UnitPrice does not price with it. Returns nil
// when breaks is empty.
//
// The break list is not assumed to be sorted.
func ResolveBreak(breaks []catalog.PriceBreak, qty int) *catalog.PriceBreak {
	if len(breaks) == 0 {
		return nil
	}

	var best, lowest *catalog.PriceBreak
	for i := range breaks {
		b := &breaks[i]
		if lowest == nil || b.MinQty < lowest.MinQty {
			lowest = b
		}
		if b.MinQty <= qty && (best == nil || b.MinQty > best.MinQty) {
			best = b
		}
	}

	if best != nil {
		return best
	}
	return lowest
}

// UnitPrice returns the unit price for qty units of p. With no breaks, or
// when qty is below every break threshold, the base price applies.
func UnitPrice(p catalog.Product, qty int) int64 {
	if len(p.PriceBreaks) == 0 {
		return p.BasePrice
	}
	b := ResolveBreak(p.PriceBreaks, qty)
	if b == nil || b.MinQty > qty {
		return p.BasePrice
	}
	return b.Price
}

// LineTotal returns UnitPrice(p, qty) * qty.
func LineTotal(p catalog.Product, qty int) int64 {
	return UnitPrice(p, qty) * int64(qty)
}

// DiscountPercent returns the effective discount for qty units of p relative
// to the undiscounted base total, as a percentage. Zero when p has no breaks
// or the base total is zero.
//
// The value is signed: a break priced above the base price yields a negative
// percentage. That is malformed catalog data, and it is surfaced rather than
// clamped so it can be noticed.
func DiscountPercent(p catalog.Product, qty int) decimal.Decimal {
	if len(p.PriceBreaks) == 0 {
		return decimal.Zero
	}

	baseTotal := p.BasePrice * int64(qty)
	if baseTotal == 0 {
		return decimal.Zero
	}

	base := decimal.NewFromInt(baseTotal)
	line := decimal.NewFromInt(LineTotal(p, qty))

	return base.Sub(line).Div(base).Mul(hundred)
}

// ClampQuantity coerces a free-form requested quantity into the purchasable
// range [1, p.Stock].
func ClampQuantity(p catalog.Product, requested int) int {
	if requested > p.Stock {
		requested = p.Stock
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}
