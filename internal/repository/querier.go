package repository

import (
	"context"
	"errors"

	"github.com/bensaadi/parapharma/internal/domain"
)

// ErrNotFound is returned when a query matches no rows. The pgx sentinel is
// translated so callers never depend on the driver.
var ErrNotFound = errors.New("not found")

// Querier is the full query surface of the store. The pgx-backed Queries
// type implements it; tests provide an in-memory implementation.
type Querier interface {
	// Catalog
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListActiveProducts(ctx context.Context) ([]domain.Product, error)
	GetVariantsForUpdate(ctx context.Context, productID int64) ([]domain.ProductVariant, error)
	DecrementProductStock(ctx context.Context, id int64, quantity int32) (int64, error)
	IncrementProductStock(ctx context.Context, id int64, quantity int32) error
	DecrementVariantStock(ctx context.Context, id int64, quantity int32) (int64, error)
	IncrementVariantStock(ctx context.Context, id int64, quantity int32) error

	// Clients
	LockClient(ctx context.Context, id int64) error

	// Geography and tariffs
	GetWilaya(ctx context.Context, id int64) (*domain.Wilaya, error)
	GetCommune(ctx context.Context, id int64) (*domain.Commune, error)
	ListActiveWilayas(ctx context.Context) ([]domain.Wilaya, error)
	GetActiveTariff(ctx context.Context, wilayaID int64, dt domain.DeliveryType) (*domain.DeliveryTariff, error)
	ListTariffs(ctx context.Context, wilayaID int64) ([]domain.DeliveryTariff, error)
	UpsertTariff(ctx context.Context, arg UpsertTariffParams) (*domain.DeliveryTariff, error)
	SetTariffActive(ctx context.Context, wilayaID int64, dt domain.DeliveryType, active bool) (int64, error)
	SetAllTariffsActive(ctx context.Context, wilayaID int64, active bool) error
	CountActiveTariffs(ctx context.Context, wilayaID int64) (int64, error)
	SetWilayaActive(ctx context.Context, wilayaID int64, active bool) error

	// Carts
	GetCartByClient(ctx context.Context, clientID int64) (*domain.Cart, error)
	GetCartBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	CreateCart(ctx context.Context, clientID *int64, sessionID *string) (*domain.Cart, error)
	GetCartItems(ctx context.Context, cartID int64) ([]domain.CartItem, error)
	GetCartItem(ctx context.Context, arg GetCartItemParams) (*domain.CartItem, error)
	AddCartItem(ctx context.Context, arg AddCartItemParams) (*domain.CartItem, error)
	UpdateCartItem(ctx context.Context, arg UpdateCartItemParams) error
	DeleteCartItem(ctx context.Context, id int64) error
	ClearCart(ctx context.Context, cartID int64) error
	DeleteCart(ctx context.Context, cartID int64) error

	// Promo codes
	GetActivePromoByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	CreatePromo(ctx context.Context, arg CreatePromoParams) (*domain.PromoCode, error)
	SetPromoActive(ctx context.Context, id int64, active bool) error
	ListPromos(ctx context.Context) ([]domain.PromoCode, error)

	// Loyalty ledger
	InsertLoyaltyEntry(ctx context.Context, arg InsertLoyaltyEntryParams) (*domain.LoyaltyEntry, error)
	SumLoyaltyPoints(ctx context.Context, clientID int64) (int64, error)
	ListLoyaltyEntries(ctx context.Context, clientID int64) ([]domain.LoyaltyEntry, error)

	// Orders
	InsertOrder(ctx context.Context, arg InsertOrderParams) (*domain.Order, error)
	InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) (*domain.OrderItem, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}

// Store is a Querier that can also run a function inside one database
// transaction. Queries issued through the Querier passed to fn see and
// produce transactional state; any error rolls the whole transaction back.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
}
