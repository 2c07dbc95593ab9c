package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/promoshop/storefront/internal/domain/cart"
	"github.com/promoshop/storefront/internal/domain/catalog"
	"github.com/promoshop/storefront/internal/domain/pricing"
)

type cartResponse struct {
	Items     []cartItemResponse `json:"items"`
	Total     int64              `json:"total"`
	ItemCount int                `json:"itemCount"`
}

type cartItemResponse struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Image     string `json:"image,omitempty"`
	Category  string `json:"category"`
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart serves the current cart snapshot.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.toCartResponse(h.cart.Snapshot()))
}

// AddCartItem resolves the product, captures the unit price the requested
// quantity qualifies for, and adds the line. The quantity is clamped to
// stock; an existing line keeps its originally captured price.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternalError(w, r, errors.Wrap(err, "get product"))
		return
	}

	qty := pricing.ClampQuantity(*p, req.Quantity)

	c := h.cart.AddItem(r.Context(), cart.Candidate{
		ProductID: p.ID,
		Price:     pricing.UnitPrice(*p, qty),
		Name:      p.Name,
		SKU:       p.SKU,
		Image:     p.Image,
		Category:  p.Category,
	})
	if qty > 1 {
		// AddItem bumps the line by one; settle the remainder in a single
		// quantity update so an existing line accumulates.
		for _, it := range c.Items {
			if it.ProductID == p.ID {
				c = h.cart.UpdateQuantity(r.Context(), p.ID, it.Quantity+qty-1)
				break
			}
		}
	}

	respondJSON(w, http.StatusCreated, h.toCartResponse(c))
}

// UpdateCartItem sets a line's quantity. Non-positive quantities coerce to 1
// and an absent line is a no-op, mirroring the store's contract.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := h.cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.toCartResponse(c))
}

// RemoveCartItem deletes a line. Removing an absent line succeeds.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	c := h.cart.RemoveItem(r.Context(), productID)
	respondJSON(w, http.StatusOK, h.toCartResponse(c))
}

// GetCartItem reports whether a product has a line in the cart.
func (h *Handler) GetCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"inCart": h.cart.IsInCart(productID)})
}

// ClearCart resets the cart to empty.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.toCartResponse(h.cart.Clear(r.Context())))
}

func (h *Handler) toCartResponse(c cart.Cart) cartResponse {
	resp := cartResponse{
		Items:     make([]cartItemResponse, len(c.Items)),
		Total:     c.Total,
		ItemCount: c.ItemCount,
	}
	for i, it := range c.Items {
		resp.Items[i] = cartItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Name:      it.Name,
			SKU:       it.SKU,
			Image:     h.imageURL(it.Image),
			Category:  it.Category,
		}
	}
	return resp
}
