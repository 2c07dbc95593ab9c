package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/promoshop/storefront/internal/domain/catalog"
	"github.com/promoshop/storefront/internal/domain/pricing"
)

type quoteResponse struct {
	ProductID       int64      `json:"productId"`
	Quantity        int        `json:"quantity"`
	UnitPrice       int64      `json:"unitPrice"`
	LineTotal       int64      `json:"lineTotal"`
	DiscountPercent float64    `json:"discountPercent"`
	Tier            *quoteTier `json:"tier,omitempty"`
}

// quoteTier describes the price break relevant to the quoted quantity. When
// the quantity does not qualify for any break, the nearest (lowest-minimum)
// tier is included with Qualifies=false as a reference for the caller's
// display; its price plays no part in the quote.
type quoteTier struct {
	MinQty    int   `json:"minQty"`
	Price     int64 `json:"price"`
	Qualifies bool  `json:"qualifies"`
}

// QuoteProduct prices a requested quantity of a product: the free-form qty
// parameter is clamped to the purchasable range, never rejected.
func (h *Handler) QuoteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternalError(w, r, errors.Wrap(err, "get product"))
		return
	}

	qty, _ := strconv.Atoi(r.URL.Query().Get("qty"))
	qty = pricing.ClampQuantity(*p, qty)

	resp := quoteResponse{
		ProductID:       p.ID,
		Quantity:        qty,
		UnitPrice:       pricing.UnitPrice(*p, qty),
		LineTotal:       pricing.LineTotal(*p, qty),
		DiscountPercent: pricing.DiscountPercent(*p, qty).InexactFloat64(),
	}
	if b := pricing.ResolveBreak(p.PriceBreaks, qty); b != nil {
		resp.Tier = &quoteTier{
			MinQty:    b.MinQty,
			Price:     b.Price,
			Qualifies: b.MinQty <= qty,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
