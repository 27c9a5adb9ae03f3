package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bensaadi/parapharma/internal/domain"
)

const getProduct = `
SELECT id, name, description, specifications, price, stock, status, created_at, updated_at
FROM products
WHERE id = $1
`

// GetProduct loads a product and its variants.
func (q *Queries) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	variants, err := q.listVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return p, nil
}

const listActiveProducts = `
SELECT id, name, description, specifications, price, stock, status, created_at, updated_at
FROM products
WHERE status = 'active'
ORDER BY id
`

// ListActiveProducts returns all active products with their variants.
func (q *Queries) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := q.db.Query(ctx, listActiveProducts)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list active products: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}

	for i := range products {
		variants, err := q.listVariants(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Variants = variants
	}
	return products, nil
}

const listVariants = `
SELECT id, product_id, sku, price, stock, is_active
FROM product_variants
WHERE product_id = $1
ORDER BY id
`

func (q *Queries) listVariants(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	rows, err := q.db.Query(ctx, listVariants, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.ProductVariant
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.Stock, &v.IsActive); err != nil {
			return nil, fmt.Errorf("list variants: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

const getVariantsForUpdate = `
SELECT id, product_id, sku, price, stock, is_active
FROM product_variants
WHERE product_id = $1 AND is_active = TRUE
ORDER BY id
FOR UPDATE
`

// GetVariantsForUpdate locks and returns the active variants of a product
// in ascending id order, the deterministic fill order for greedy decrements.
func (q *Queries) GetVariantsForUpdate(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	rows, err := q.db.Query(ctx, getVariantsForUpdate, productID)
	if err != nil {
		return nil, fmt.Errorf("lock variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.ProductVariant
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.Stock, &v.IsActive); err != nil {
			return nil, fmt.Errorf("lock variants: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

const decrementProductStock = `
UPDATE products
SET stock = stock - $2, updated_at = NOW()
WHERE id = $1 AND stock >= $2
`

// DecrementProductStock conditionally decrements base stock, returning the
// number of rows updated. Zero means the guard failed (insufficient stock).
func (q *Queries) DecrementProductStock(ctx context.Context, id int64, quantity int32) (int64, error) {
	tag, err := q.db.Exec(ctx, decrementProductStock, id, quantity)
	if err != nil {
		return 0, fmt.Errorf("decrement product stock: %w", err)
	}
	return tag.RowsAffected(), nil
}

const incrementProductStock = `
UPDATE products
SET stock = stock + $2, updated_at = NOW()
WHERE id = $1
`

// IncrementProductStock restores base stock.
func (q *Queries) IncrementProductStock(ctx context.Context, id int64, quantity int32) error {
	if _, err := q.db.Exec(ctx, incrementProductStock, id, quantity); err != nil {
		return fmt.Errorf("increment product stock: %w", err)
	}
	return nil
}

const decrementVariantStock = `
UPDATE product_variants
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
`

// DecrementVariantStock conditionally decrements a variant's stock,
// returning the number of rows updated.
func (q *Queries) DecrementVariantStock(ctx context.Context, id int64, quantity int32) (int64, error) {
	tag, err := q.db.Exec(ctx, decrementVariantStock, id, quantity)
	if err != nil {
		return 0, fmt.Errorf("decrement variant stock: %w", err)
	}
	return tag.RowsAffected(), nil
}

const incrementVariantStock = `
UPDATE product_variants
SET stock = stock + $2
WHERE id = $1
`

// IncrementVariantStock restores a variant's stock.
func (q *Queries) IncrementVariantStock(ctx context.Context, id int64, quantity int32) error {
	if _, err := q.db.Exec(ctx, incrementVariantStock, id, quantity); err != nil {
		return fmt.Errorf("increment variant stock: %w", err)
	}
	return nil
}

const lockClient = `
SELECT id FROM clients WHERE id = $1 FOR UPDATE
`

// LockClient takes a row lock on the client, serialising concurrent loyalty
// conversions for that client within their transactions.
func (q *Queries) LockClient(ctx context.Context, id int64) error {
	var got int64
	if err := q.db.QueryRow(ctx, lockClient, id).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock client: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p           domain.Product
		nameJSON    []byte
		descJSON    []byte
		specsJSON   []byte
		statusValue string
	)
	err := row.Scan(&p.ID, &nameJSON, &descJSON, &specsJSON, &p.Price, &p.Stock, &statusValue, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProductStatus(statusValue)
	if err := json.Unmarshal(nameJSON, &p.Name); err != nil {
		return nil, fmt.Errorf("decode product name: %w", err)
	}
	if len(descJSON) > 0 {
		if err := json.Unmarshal(descJSON, &p.Description); err != nil {
			return nil, fmt.Errorf("decode product description: %w", err)
		}
	}
	if len(specsJSON) > 0 {
		if err := json.Unmarshal(specsJSON, &p.Specifications); err != nil {
			return nil, fmt.Errorf("decode product specifications: %w", err)
		}
	}
	return &p, nil
}
