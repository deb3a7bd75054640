// Package catalog provides the product repository behind the admin
// dashboard's bulk operations, JSON import/export, and the low-stock scan
// that feeds inventory alert emails.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almaluz/backend/pkg/db"
)

// Product is one catalog row.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository provides Postgres access to the product catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a product repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, sku, price, stock, is_active, created_at, updated_at`

// LowStock lists active products at or below the stock threshold.
func (r *Repository) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE is_active AND stock <= $1
		 ORDER BY stock ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("catalog: low stock query: %w", err)
	}
	return collectProducts(rows)
}

// List returns all products, newest first.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return collectProducts(rows)
}

// BulkSetActive flips the active flag on a set of products and returns
// the number of rows touched.
func (r *Repository) BulkSetActive(ctx context.Context, ids []uuid.UUID, active bool) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = $2, updated_at = now() WHERE id = ANY($1)`,
		ids, active)
	if err != nil {
		return 0, fmt.Errorf("catalog: bulk set active: %w", err)
	}
	return tag.RowsAffected(), nil
}

// BulkAdjustPrices scales prices of the given products by percent
// (e.g. 10 raises by 10%, -5 lowers by 5%). Results are rounded to
// cents server-side.
func (r *Repository) BulkAdjustPrices(ctx context.Context, ids []uuid.UUID, percent float64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET price = round((price * (1 + $2::numeric / 100))::numeric, 2), updated_at = now()
		 WHERE id = ANY($1)`,
		ids, percent)
	if err != nil {
		return 0, fmt.Errorf("catalog: bulk adjust prices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Import upserts products by SKU inside one transaction. Used by the
// admin JSON import; a failed row aborts the whole import so a partial
// file never half-applies.
func (r *Repository) Import(ctx context.Context, products []Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range products {
			p := &products[i]
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO products (id, name, sku, price, stock, is_active)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (sku) DO UPDATE
				 SET name = EXCLUDED.name, price = EXCLUDED.price,
				     stock = EXCLUDED.stock, is_active = EXCLUDED.is_active,
				     updated_at = now()`,
				p.ID, p.Name, p.SKU, p.Price, p.Stock, p.IsActive)
			if err != nil {
				return fmt.Errorf("catalog: import %q: %w", p.SKU, err)
			}
		}
		return nil
	})
}

// Count returns the number of products, for the admin metrics endpoint.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
