// Package handler exposes the storefront and admin JSON APIs over echo.
package handler

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Location *service.LocationService
	Promo    *service.PromoService
	Loyalty  *service.LoyaltyService
	Orders   *service.OrderService

	validate      *validator.Validate
	logger        *slog.Logger
	defaultLocale string
}

// New creates a Handler.
func New(
	catalog *service.CatalogService,
	cart *service.CartService,
	location *service.LocationService,
	promo *service.PromoService,
	loyalty *service.LoyaltyService,
	orders *service.OrderService,
	logger *slog.Logger,
	defaultLocale string,
) *Handler {
	return &Handler{
		Catalog:       catalog,
		Cart:          cart,
		Location:      location,
		Promo:         promo,
		Loyalty:       loyalty,
		Orders:        orders,
		validate:      validator.New(),
		logger:        logger,
		defaultLocale: defaultLocale,
	}
}

// RegisterRoutes mounts the storefront and admin APIs on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Storefront
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)

	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddCartItem)
	api.PATCH("/cart/items", h.UpdateCartItem)
	api.DELETE("/cart/items", h.RemoveCartItem)
	api.POST("/cart/migrate", h.MigrateCart)

	api.GET("/delivery/wilayas", h.ListWilayas)
	api.GET("/delivery/price", h.GetDeliveryPrice)

	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)

	api.GET("/loyalty/balance", h.GetLoyaltyBalance)
	api.GET("/loyalty/history", h.GetLoyaltyHistory)

	// Admin
	admin := api.Group("/admin")
	admin.GET("/wilayas/:id/tariffs", h.AdminListTariffs)
	admin.PUT("/tariffs", h.AdminSetTariff)
	admin.PATCH("/tariffs/activation", h.AdminSetTariffActive)
	admin.PATCH("/wilayas/:id/activation", h.AdminSetWilayaActive)

	admin.POST("/promos", h.AdminCreatePromo)
	admin.GET("/promos", h.AdminListPromos)
	admin.DELETE("/promos/:id", h.AdminDeactivatePromo)

	admin.GET("/orders", h.AdminListOrders)
	admin.PATCH("/orders/:id/status", h.AdminUpdateOrderStatus)
	admin.POST("/orders/:id/cancel", h.AdminCancelOrder)
}

// locale picks the response locale from the Accept-Language header, falling
// back to the store default.
func (h *Handler) locale(c echo.Context) string {
	if l := c.Request().Header.Get("Accept-Language"); l != "" {
		if len(l) >= 2 {
			return l[:2]
		}
	}
	return h.defaultLocale
}

// identity extracts the caller's cart identity: an authenticated client id
// from X-Client-ID or a guest session id from X-Session-ID.
func identity(c echo.Context) (clientID *int64, sessionID *string) {
	if v := c.Request().Header.Get("X-Client-ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			clientID = &id
			return
		}
	}
	if v := c.Request().Header.Get("X-Session-ID"); v != "" {
		sessionID = &v
	}
	return
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("handler.path_id", "invalid id")
	}
	return id, nil
}
