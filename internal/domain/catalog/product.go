package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Prices are whole
// currency units (no minor units).
type Product struct {
	ID          int64
	Name        string
	SKU         string
	Category    string
	BasePrice   int64
	Stock       int
	Image       string
	PriceBreaks []PriceBreak
}

// PriceBreak is a volume-discount tier: the unit price that applies when the
// requested quantity is at least MinQty.
//
// Discount is the advertised discount percentage for display only. Pricing
// derives the effective discount from BasePrice vs the tier price and never
// reads this field.
type PriceBreak struct {
	MinQty   int
	Price    int64
	Discount decimal.Decimal
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
}
