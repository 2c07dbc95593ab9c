package catalog

import (
	"sort"
	"strings"
)

// Sort orders supported by Query.
const (
	SortName      = "name"
	SortNameDesc  = "name-desc"
	SortPrice     = "price"
	SortPriceDesc = "price-desc"
	SortStock     = "stock"
	SortStockAsc  = "stock-asc"
)

// Query describes a catalog listing request: free-text search over name and
// SKU, an optional category filter, a sort order, and pagination.
type Query struct {
	Search   string
	Category string
	Sort     string
	Page     int
	PerPage  int
}

// Page is one page of query results. Total counts all products matching the
// filters, before pagination.
type Page struct {
	Products   []Product
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// DefaultPerPage is used when a query does not specify a page size.
const DefaultPerPage = 12

// Run applies q to products and returns the matching page. The input slice is
// not modified.
func (q Query) Run(products []Product) Page {
	filtered := make([]Product, 0, len(products))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	for _, p := range products {
		if q.Category != "" && q.Category != "all" && p.Category != q.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, q.Sort)

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	total := len(filtered)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return Page{
		Products:   filtered[start:end],
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

func sortProducts(products []Product, order string) {
	switch order {
	case SortNameDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name > products[j].Name })
	case SortPrice:
		sort.SliceStable(products, func(i, j int) bool { return products[i].BasePrice < products[j].BasePrice })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].BasePrice > products[j].BasePrice })
	case SortStock:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Stock > products[j].Stock })
	case SortStockAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Stock < products[j].Stock })
	default: // SortName
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	}
}

// Categories returns the distinct categories present in products, sorted.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		seen[p.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
