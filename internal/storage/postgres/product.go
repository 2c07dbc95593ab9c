package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promoshop/storefront/internal/domain/catalog"
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, sku, category, base_price, stock, COALESCE(image, '')`

// List returns all products with their price breaks, ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	breaks, err := r.loadBreaks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].PriceBreaks = breaks[products[i].ID]
	}
	return products, nil
}

// GetByID returns a single product with its price breaks. Returns
// catalog.ErrNotFound when no matching product exists.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return r.getOne(ctx, row)
}

// GetBySKU returns a single product matched by SKU, case-insensitively.
// Returns catalog.ErrNotFound when no matching product exists.
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE UPPER(sku) = UPPER($1)`, sku)
	return r.getOne(ctx, row)
}

func (r *ProductRepository) getOne(ctx context.Context, row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.BasePrice, &p.Stock, &p.Image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrap(err, "getting product")
	}

	p.PriceBreaks, err = r.loadBreaksFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// loadBreaks returns all price breaks grouped by product ID.
func (r *ProductRepository) loadBreaks(ctx context.Context) (map[int64][]catalog.PriceBreak, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, min_qty, price, discount FROM price_breaks ORDER BY product_id, min_qty`)
	if err != nil {
		return nil, errors.Wrap(err, "listing price breaks")
	}
	defer rows.Close()

	grouped := make(map[int64][]catalog.PriceBreak)
	for rows.Next() {
		var productID int64
		var b catalog.PriceBreak
		if err := rows.Scan(&productID, &b.MinQty, &b.Price, &b.Discount); err != nil {
			return nil, errors.Wrap(err, "scanning price break")
		}
		grouped[productID] = append(grouped[productID], b)
	}
	return grouped, rows.Err()
}

func (r *ProductRepository) loadBreaksFor(ctx context.Context, productID int64) ([]catalog.PriceBreak, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT min_qty, price, discount FROM price_breaks WHERE product_id = $1 ORDER BY min_qty`, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing price breaks for product %d", productID)
	}
	defer rows.Close()

	var breaks []catalog.PriceBreak
	for rows.Next() {
		var b catalog.PriceBreak
		if err := rows.Scan(&b.MinQty, &b.Price, &b.Discount); err != nil {
			return nil, errors.Wrap(err, "scanning price break")
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}

func scanProducts(rows pgx.Rows) ([]catalog.Product, error) {
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.BasePrice, &p.Stock, &p.Image); err != nil {
			return nil, errors.Wrap(err, "scanning product")
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
