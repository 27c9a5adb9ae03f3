package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bensaadi/parapharma/internal/domain"
)

// InsertOrderParams carries every snapshot field of a new order.
type InsertOrderParams struct {
	ClientID          *int64
	FirstName         string
	LastName          string
	Phone             string
	Address           string
	WilayaName        string
	CommuneName       string
	DeliveryType      domain.DeliveryType
	DeliveryPrice     int64
	ProductsTotal     int64
	DiscountTotal     int64
	TotalPrice        int64
	PromoCode         *string
	LoyaltyPointsUsed int64
	Status            domain.OrderStatus
}

const insertOrder = `
INSERT INTO orders (
	client_id, first_name, last_name, phone, address,
	wilaya_name, commune_name, delivery_type, delivery_price,
	products_total, discount_total, total_price,
	promo_code, loyalty_points_used, status
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id, client_id, first_name, last_name, phone, address,
	wilaya_name, commune_name, delivery_type, delivery_price,
	products_total, discount_total, total_price,
	promo_code, loyalty_points_used, status, created_at, updated_at
`

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (*domain.Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, insertOrder,
		arg.ClientID, arg.FirstName, arg.LastName, arg.Phone, arg.Address,
		arg.WilayaName, arg.CommuneName, arg.DeliveryType, arg.DeliveryPrice,
		arg.ProductsTotal, arg.DiscountTotal, arg.TotalPrice,
		arg.PromoCode, arg.LoyaltyPointsUsed, arg.Status))
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

// InsertOrderItemParams persists one order line with its frozen snapshot.
type InsertOrderItemParams struct {
	OrderID   int64
	ProductID int64
	VariantID *int64
	Quantity  int32
	UnitPrice int64
	Snapshot  domain.ItemSnapshot
}

const insertOrderItem = `
INSERT INTO order_items (order_id, product_id, variant_id, quantity, unit_price, metadata_snapshot)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, product_id, variant_id, quantity, unit_price, metadata_snapshot, created_at
`

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) (*domain.OrderItem, error) {
	snapshotJSON, err := json.Marshal(arg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode item snapshot: %w", err)
	}

	item, err := scanOrderItem(q.db.QueryRow(ctx, insertOrderItem,
		arg.OrderID, arg.ProductID, arg.VariantID, arg.Quantity, arg.UnitPrice, snapshotJSON))
	if err != nil {
		return nil, fmt.Errorf("insert order item: %w", err)
	}
	return item, nil
}

const getOrder = `
SELECT id, client_id, first_name, last_name, phone, address,
	wilaya_name, commune_name, delivery_type, delivery_price,
	products_total, discount_total, total_price,
	promo_code, loyalty_points_used, status, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, getOrder, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

const getOrderForUpdate = getOrder + ` FOR UPDATE`

// GetOrderForUpdate locks the order row, making status changes and
// cancellation mutually exclusive for that order.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

const getOrderItems = `
SELECT id, order_id, product_id, variant_id, quantity, unit_price, metadata_snapshot, created_at
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("get order items: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
`

func (q *Queries) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if _, err := q.db.Exec(ctx, updateOrderStatus, id, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

const listOrdersByStatus = `
SELECT id, client_id, first_name, last_name, phone, address,
	wilaya_name, commune_name, delivery_type, delivery_price,
	products_total, discount_total, total_price,
	promo_code, loyalty_points_used, status, created_at, updated_at
FROM orders
WHERE status = $1
ORDER BY created_at DESC
`

func (q *Queries) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByStatus, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		dt     string
		status string
	)
	err := row.Scan(&o.ID, &o.ClientID, &o.FirstName, &o.LastName, &o.Phone, &o.Address,
		&o.WilayaName, &o.CommuneName, &dt, &o.DeliveryPrice,
		&o.ProductsTotal, &o.DiscountTotal, &o.TotalPrice,
		&o.PromoCode, &o.LoyaltyPointsUsed, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.DeliveryType = domain.DeliveryType(dt)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func scanOrderItem(row pgx.Row) (*domain.OrderItem, error) {
	var (
		item         domain.OrderItem
		snapshotJSON []byte
	)
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
		&item.Quantity, &item.UnitPrice, &snapshotJSON, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshotJSON, &item.Snapshot); err != nil {
		return nil, fmt.Errorf("decode item snapshot: %w", err)
	}
	return &item, nil
}
