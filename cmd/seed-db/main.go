package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/promoshop/storefront/db"
	"github.com/promoshop/storefront/internal/storage/postgres"
)

type priceBreakJSON struct {
	MinQty   int             `json:"minQty"`
	Price    int64           `json:"price"`
	Discount decimal.Decimal `json:"discount"`
}

type productJSON struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	SKU         string           `json:"sku"`
	Category    string           `json:"category"`
	BasePrice   int64            `json:"basePrice"`
	Stock       int              `json:"stock"`
	Image       string           `json:"image"`
	PriceBreaks []priceBreakJSON `json:"priceBreaks"`
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Positional arguments are product JSON files (optionally gzipped).
	// Without any, the embedded catalog is loaded.
	if err := run(ctx, databaseURL, flag.Args()); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	products, err := loadProducts(ctx, files)
	if err != nil {
		return errors.Wrap(err, "load products")
	}

	slog.Info("products loaded", slog.Int("count", len(products)))

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeProducts(ctx, pool, products); err != nil {
		return errors.Wrap(err, "write products")
	}

	return nil
}

// loadProducts parses all given files concurrently and concatenates their
// products. With no files it falls back to the embedded catalog.
func loadProducts(ctx context.Context, files []string) ([]productJSON, error) {
	if len(files) == 0 {
		slog.Info("no product files given, using embedded catalog")

		var products []productJSON
		if err := json.Unmarshal(db.SeedProducts, &products); err != nil {
			return nil, errors.Wrap(err, "parse embedded catalog")
		}
		return products, nil
	}

	parsed := make([][]productJSON, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			products, err := parseFile(path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			parsed[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []productJSON
	for _, products := range parsed {
		all = append(all, products...)
	}
	return all, nil
}

func parseFile(path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer zr.Close()
		r = zr
	}

	var products []productJSON
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	return products, nil
}

// writeProducts upserts products and replaces their price breaks in a single
// transaction, so a partially applied seed never becomes visible.
func writeProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, p := range products {
		if _, err := tx.Exec(ctx,
			`INSERT INTO products (id, name, sku, category, base_price, stock, image)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
			   name = EXCLUDED.name,
			   sku = EXCLUDED.sku,
			   category = EXCLUDED.category,
			   base_price = EXCLUDED.base_price,
			   stock = EXCLUDED.stock,
			   image = EXCLUDED.image`,
			p.ID, p.Name, p.SKU, p.Category, p.BasePrice, p.Stock, p.Image,
		); err != nil {
			return errors.Wrapf(err, "upsert product %d", p.ID)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM price_breaks WHERE product_id = $1`, p.ID,
		); err != nil {
			return errors.Wrapf(err, "clear price breaks for product %d", p.ID)
		}

		rows := make([][]any, 0, len(p.PriceBreaks))
		for _, b := range p.PriceBreaks {
			rows = append(rows, []any{p.ID, b.MinQty, b.Price, b.Discount})
		}
		if len(rows) > 0 {
			if _, err := tx.CopyFrom(ctx,
				pgx.Identifier{"price_breaks"},
				[]string{"product_id", "min_qty", "price", "discount"},
				pgx.CopyFromRows(rows),
			); err != nil {
				return errors.Wrapf(err, "insert price breaks for product %d", p.ID)
			}
		}

		slog.Info("seeded product",
			slog.Int64("id", p.ID),
			slog.String("sku", p.SKU),
			slog.Int("breaks", len(p.PriceBreaks)),
		)
	}

	return errors.Wrap(tx.Commit(ctx), "commit")
}
