// Package cart maintains a running cart of line items with derived totals,
// expressed as a pure state-transition function plus a persistent store.
package cart

// Item is one line in the cart: a product reference, the quantity, and the
// unit price captured when the line was first added. The captured price is
// immutable for the life of the line; later catalog price changes (or later
// adds carrying a different price) never touch it.
type Item struct {
	ProductID int64
	Quantity  int
	Price     int64
	Name      string
	SKU       string
	Image     string
	Category  string
}

// Candidate carries the fields of a line item to be added, without a
// quantity. Adding a candidate either appends a new line with quantity 1 or
// increments the quantity of the existing line for the same product.
type Candidate struct {
	ProductID int64
	Price     int64
	Name      string
	SKU       string
	Image     string
	Category  string
}

// Cart is an immutable snapshot of the cart state. Total and ItemCount are
// derived from Items on every transition; they are never patched
// incrementally and never trusted from storage.
type Cart struct {
	Items     []Item
	Total     int64
	ItemCount int
}

// Operation is one cart state transition. The concrete types are Add,
// Remove, SetQuantity, and Clear.
type Operation interface {
	isOperation()
}

// Add appends a new line with quantity 1, or increments the quantity of the
// existing line for the same product. An existing line keeps its captured
// price and display fields.
type Add struct {
	Candidate Candidate
}

// Remove deletes the line for a product. Removing an absent product is a
// no-op, not an error.
type Remove struct {
	ProductID int64
}

// SetQuantity replaces a line's quantity, floored at 1. A request for zero
// or a negative quantity coerces to 1 and never removes the line; removal is
// only via Remove. Setting quantity for an absent product is a no-op.
type SetQuantity struct {
	ProductID int64
	Quantity  int
}

// Clear resets the cart to empty.
type Clear struct{}

func (Add) isOperation()         {}
func (Remove) isOperation()      {}
func (SetQuantity) isOperation() {}
func (Clear) isOperation()       {}

// Apply produces the cart state that results from applying op to c. It is
// pure: c is never modified, and the returned cart shares no mutable state
// with it.
func Apply(c Cart, op Operation) Cart {
	switch op := op.(type) {
	case Add:
		return applyAdd(c, op.Candidate)
	case Remove:
		return applyRemove(c, op.ProductID)
	case SetQuantity:
		return applySetQuantity(c, op.ProductID, op.Quantity)
	case Clear:
		return Cart{}
	default:
		return snapshot(c.Items)
	}
}

func applyAdd(c Cart, cand Candidate) Cart {
	items := make([]Item, len(c.Items), len(c.Items)+1)
	copy(items, c.Items)

	for i := range items {
		if items[i].ProductID == cand.ProductID {
			items[i].Quantity++
			return snapshot(items)
		}
	}

	items = append(items, Item{
		ProductID: cand.ProductID,
		Quantity:  1,
		Price:     cand.Price,
		Name:      cand.Name,
		SKU:       cand.SKU,
		Image:     cand.Image,
		Category:  cand.Category,
	})
	return snapshot(items)
}

func applyRemove(c Cart, productID int64) Cart {
	items := make([]Item, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	return snapshot(items)
}

func applySetQuantity(c Cart, productID int64, quantity int) Cart {
	if quantity < 1 {
		quantity = 1
	}

	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
		}
	}
	return snapshot(items)
}

// snapshot builds a Cart around items, recomputing the derived totals.
func snapshot(items []Item) Cart {
	var total int64
	var count int
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
		count += it.Quantity
	}
	return Cart{Items: items, Total: total, ItemCount: count}
}

// Contains reports whether the cart has a line for productID.
func (c Cart) Contains(productID int64) bool {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
