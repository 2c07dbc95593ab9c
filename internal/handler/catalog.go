package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/promoshop/storefront/internal/domain/catalog"
)

type productResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	SKU         string               `json:"sku"`
	Category    string               `json:"category"`
	BasePrice   int64                `json:"basePrice"`
	Stock       int                  `json:"stock"`
	Image       string               `json:"image,omitempty"`
	PriceBreaks []priceBreakResponse `json:"priceBreaks"`
}

type priceBreakResponse struct {
	MinQty   int     `json:"minQty"`
	Price    int64   `json:"price"`
	Discount float64 `json:"discount,omitempty"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalPages int               `json:"totalPages"`
	Categories []string          `json:"categories"`
}

// ListProducts serves the catalog listing with search, category, sort, and
// pagination query parameters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondInternalError(w, r, errors.Wrap(err, "list products"))
		return
	}

	q := r.URL.Query()
	page := catalog.Query{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Page:     intParam(q.Get("page")),
		PerPage:  intParam(q.Get("per_page")),
	}.Run(products)

	resp := productListResponse{
		Products:   make([]productResponse, len(page.Products)),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		Categories: catalog.Categories(products),
	}
	for i, p := range page.Products {
		resp.Products[i] = h.toProductResponse(p)
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetProduct serves a single product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
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

	respondJSON(w, http.StatusOK, h.toProductResponse(*p))
}

// GetProductBySKU serves a single product by SKU. The bloom filter answers
// definite misses without touching the repository.
func (h *Handler) GetProductBySKU(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	if h.skus != nil && !h.skus.MayHave(sku) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	p, err := h.products.GetBySKU(r.Context(), sku)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondInternalError(w, r, errors.Wrap(err, "get product by sku"))
		return
	}

	respondJSON(w, http.StatusOK, h.toProductResponse(*p))
}

func (h *Handler) toProductResponse(p catalog.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Category:    p.Category,
		BasePrice:   p.BasePrice,
		Stock:       p.Stock,
		Image:       h.imageURL(p.Image),
		PriceBreaks: make([]priceBreakResponse, len(p.PriceBreaks)),
	}
	for i, b := range p.PriceBreaks {
		resp.PriceBreaks[i] = priceBreakResponse{
			MinQty:   b.MinQty,
			Price:    b.Price,
			Discount: b.Discount.InexactFloat64(),
		}
	}
	return resp
}

func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" || strings.Contains(path, "://") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + path
}

// intParam parses a positive integer query parameter; anything else is 0,
// letting the catalog query apply its defaults.
func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
