// Package handler exposes the storefront over HTTP: catalog browsing,
// pricing quotes, and the cart.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/promoshop/storefront/internal/domain/cart"
	"github.com/promoshop/storefront/internal/domain/catalog"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler routes HTTP requests to the catalog and the cart store. It holds
// no business logic of its own beyond request decoding and response mapping.
type Handler struct {
	products     catalog.Repository
	skus         *catalog.SKUFilter
	cart         *cart.Store
	imageBaseURL string
}

// New constructs a Handler. skus may be nil, in which case SKU lookups skip
// the bloom-filter fast path and always hit the repository.
func New(cfg Config, products catalog.Repository, skus *catalog.SKUFilter, cartStore *cart.Store) *Handler {
	return &Handler{
		products:     products,
		skus:         skus,
		cart:         cartStore,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(MethodNotAllowedJSON)

	r.Get("/products", h.ListProducts)
	r.Get("/products/sku/{sku}", h.GetProductBySKU)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/products/{id}/quote", h.QuoteProduct)

	r.Get("/cart", h.GetCart)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/items", h.AddCartItem)
	r.Get("/cart/items/{productId}", h.GetCartItem)
	r.Patch("/cart/items/{productId}", h.UpdateCartItem)
	r.Delete("/cart/items/{productId}", h.RemoveCartItem)

	return r
}

// MethodNotAllowedJSON keeps error responses JSON even for unrouted methods.
func MethodNotAllowedJSON(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}
