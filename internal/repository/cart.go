package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bensaadi/parapharma/internal/domain"
)

const getCartByClient = `
SELECT id, client_id, session_id, created_at, updated_at
FROM carts
WHERE client_id = $1
`

func (q *Queries) GetCartByClient(ctx context.Context, clientID int64) (*domain.Cart, error) {
	c, err := scanCart(q.db.QueryRow(ctx, getCartByClient, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cart by client: %w", err)
	}
	return c, nil
}

const getCartBySession = `
SELECT id, client_id, session_id, created_at, updated_at
FROM carts
WHERE session_id = $1
`

func (q *Queries) GetCartBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	c, err := scanCart(q.db.QueryRow(ctx, getCartBySession, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cart by session: %w", err)
	}
	return c, nil
}

const createCart = `
INSERT INTO carts (client_id, session_id)
VALUES ($1, $2)
RETURNING id, client_id, session_id, created_at, updated_at
`

// CreateCart creates a cart keyed by exactly one of clientID or sessionID.
func (q *Queries) CreateCart(ctx context.Context, clientID *int64, sessionID *string) (*domain.Cart, error) {
	c, err := scanCart(q.db.QueryRow(ctx, createCart, clientID, sessionID))
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

const getCartItems = `
SELECT id, cart_id, product_id, variant_id, quantity, price_snapshot, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY id
`

func (q *Queries) GetCartItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	rows, err := q.db.Query(ctx, getCartItems, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.VariantID,
			&item.Quantity, &item.PriceSnapshot, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("get cart items: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetCartItemParams identifies a cart line by product (+ optional variant).
type GetCartItemParams struct {
	CartID    int64
	ProductID int64
	VariantID *int64
}

const getCartItem = `
SELECT id, cart_id, product_id, variant_id, quantity, price_snapshot, created_at, updated_at
FROM cart_items
WHERE cart_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3
`

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (*domain.CartItem, error) {
	var item domain.CartItem
	err := q.db.QueryRow(ctx, getCartItem, arg.CartID, arg.ProductID, arg.VariantID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.VariantID,
		&item.Quantity, &item.PriceSnapshot, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return &item, nil
}

// AddCartItemParams inserts a new cart line.
type AddCartItemParams struct {
	CartID        int64
	ProductID     int64
	VariantID     *int64
	Quantity      int32
	PriceSnapshot int64
}

const addCartItem = `
INSERT INTO cart_items (cart_id, product_id, variant_id, quantity, price_snapshot)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, cart_id, product_id, variant_id, quantity, price_snapshot, created_at, updated_at
`

func (q *Queries) AddCartItem(ctx context.Context, arg AddCartItemParams) (*domain.CartItem, error) {
	var item domain.CartItem
	err := q.db.QueryRow(ctx, addCartItem, arg.CartID, arg.ProductID, arg.VariantID,
		arg.Quantity, arg.PriceSnapshot).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.VariantID,
		&item.Quantity, &item.PriceSnapshot, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return &item, nil
}

// UpdateCartItemParams rewrites a line's quantity and refreshes its price
// snapshot.
type UpdateCartItemParams struct {
	ID            int64
	Quantity      int32
	PriceSnapshot int64
}

const updateCartItem = `
UPDATE cart_items
SET quantity = $2, price_snapshot = $3, updated_at = NOW()
WHERE id = $1
`

func (q *Queries) UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error {
	if _, err := q.db.Exec(ctx, updateCartItem, arg.ID, arg.Quantity, arg.PriceSnapshot); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

const deleteCartItem = `
DELETE FROM cart_items WHERE id = $1
`

func (q *Queries) DeleteCartItem(ctx context.Context, id int64) error {
	if _, err := q.db.Exec(ctx, deleteCartItem, id); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

const clearCart = `
DELETE FROM cart_items WHERE cart_id = $1
`

func (q *Queries) ClearCart(ctx context.Context, cartID int64) error {
	if _, err := q.db.Exec(ctx, clearCart, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

const deleteCart = `
DELETE FROM carts WHERE id = $1
`

func (q *Queries) DeleteCart(ctx context.Context, cartID int64) error {
	if _, err := q.db.Exec(ctx, deleteCart, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var c domain.Cart
	if err := row.Scan(&c.ID, &c.ClientID, &c.SessionID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
