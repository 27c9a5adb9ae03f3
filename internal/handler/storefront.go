package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bensaadi/parapharma/internal/domain"
)

// productResponse is the localized storefront view of a product.
type productResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	LowestPrice    int64             `json:"lowest_price"`
	HighestPrice   int64             `json:"highest_price"`
	Available      bool              `json:"available"`
	Stock          int32             `json:"stock"`
	Variants       []variantResponse `json:"variants,omitempty"`
}

type variantResponse struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Price int64  `json:"price"`
	Stock int32  `json:"stock"`
}

func (h *Handler) productToResponse(p *domain.Product, locale string) productResponse {
	resp := productResponse{
		ID:             p.ID,
		Name:           p.Name.Resolve(locale, h.defaultLocale),
		Description:    p.Description.Resolve(locale, h.defaultLocale),
		Specifications: p.Specifications,
		LowestPrice:    p.LowestPrice(),
		HighestPrice:   p.HighestPrice(),
		Available:      p.IsAvailable(),
		Stock:          p.AvailableStock(),
	}
	for _, v := range p.Variants {
		if !v.IsActive {
			continue
		}
		resp.Variants = append(resp.Variants, variantResponse{
			ID:    v.ID,
			SKU:   v.SKU,
			Price: v.Price,
			Stock: v.Stock,
		})
	}
	return resp
}

// ListProducts returns all active products.
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.Catalog.ListProducts(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}

	locale := h.locale(c)
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, h.productToResponse(&products[i], locale))
	}
	return c.JSON(http.StatusOK, out)
}

// GetProduct returns one product.
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	product, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, h.productToResponse(product, h.locale(c)))
}

type cartItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int32  `json:"quantity" validate:"gte=0"`
}

type cartResponse struct {
	CartID    int64             `json:"cart_id"`
	Items     []domain.CartItem `json:"items"`
	Subtotal  int64             `json:"subtotal"`
	ItemCount int               `json:"item_count"`
}

func toCartResponse(cartID int64, summary *domain.CartSummary) cartResponse {
	return cartResponse{
		CartID:    cartID,
		Items:     summary.Items,
		Subtotal:  summary.Subtotal,
		ItemCount: summary.ItemCount,
	}
}

// resolveCart loads the caller's cart. Anonymous first-touch callers get a
// fresh session id, echoed back in the X-Session-ID response header so the
// client can persist it.
func (h *Handler) resolveCart(c echo.Context) (*domain.Cart, error) {
	clientID, sessionID := identity(c)
	if clientID == nil && sessionID == nil {
		fresh := uuid.NewString()
		sessionID = &fresh
		c.Response().Header().Set("X-Session-ID", fresh)
	}
	return h.Cart.GetOrCreateCart(c.Request().Context(), clientID, sessionID)
}

// GetCart returns the caller's cart, creating an empty one on first use.
func (h *Handler) GetCart(c echo.Context) error {
	cart, err := h.resolveCart(c)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	summary, err := h.Cart.GetSummary(c.Request().Context(), cart.ID)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(cart.ID, summary))
}

// AddCartItem adds a product line to the caller's cart.
func (h *Handler) AddCartItem(c echo.Context) error {
	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("cart.add_item", "invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("cart.add_item", err.Error()))
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	summary, err := h.Cart.AddItem(c.Request().Context(), cart.ID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(cart.ID, summary))
}

// UpdateCartItem sets a line's quantity; 0 removes the line.
func (h *Handler) UpdateCartItem(c echo.Context) error {
	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("cart.update_item", "invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("cart.update_item", err.Error()))
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	summary, err := h.Cart.UpdateQuantity(c.Request().Context(), cart.ID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(cart.ID, summary))
}

// RemoveCartItem deletes a line from the caller's cart.
func (h *Handler) RemoveCartItem(c echo.Context) error {
	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("cart.remove_item", "invalid request body"))
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	summary, err := h.Cart.RemoveItem(c.Request().Context(), cart.ID, req.ProductID, req.VariantID)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(cart.ID, summary))
}

// MigrateCart merges the caller's guest cart into their client cart after
// login. Requires both X-Session-ID and X-Client-ID.
func (h *Handler) MigrateCart(c echo.Context) error {
	clientHeader := c.Request().Header.Get("X-Client-ID")
	sessionID := c.Request().Header.Get("X-Session-ID")
	clientID, err := strconv.ParseInt(clientHeader, 10, 64)
	if err != nil || clientID <= 0 || sessionID == "" {
		return ErrorResponse(c, h.logger, domain.Invalid("cart.migrate", "both session and client identity are required"))
	}

	if err := h.Cart.MigrateGuestCart(c.Request().Context(), sessionID, clientID); err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListWilayas returns the wilayas currently open for delivery.
func (h *Handler) ListWilayas(c echo.Context) error {
	wilayas, err := h.Location.ListActiveWilayas(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}

	locale := h.locale(c)
	type wilayaResponse struct {
		ID   int64  `json:"id"`
		Code int32  `json:"code"`
		Name string `json:"name"`
	}
	out := make([]wilayaResponse, 0, len(wilayas))
	for _, w := range wilayas {
		out = append(out, wilayaResponse{ID: w.ID, Code: w.Code, Name: w.Name.Resolve(locale, h.defaultLocale)})
	}
	return c.JSON(http.StatusOK, out)
}

// GetDeliveryPrice quotes the delivery price for a destination.
func (h *Handler) GetDeliveryPrice(c echo.Context) error {
	wilayaID, err := strconv.ParseInt(c.QueryParam("wilaya_id"), 10, 64)
	if err != nil || wilayaID <= 0 {
		return ErrorResponse(c, h.logger, domain.Invalid("location.quote", "invalid wilaya_id"))
	}
	dt := domain.DeliveryType(c.QueryParam("delivery_type"))

	price, err := h.Location.GetDeliveryPrice(c.Request().Context(), wilayaID, dt)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"price": price})
}

// CreateOrder runs checkout.
func (h *Handler) CreateOrder(c echo.Context) error {
	var input domain.CreateOrderInput
	if err := c.Bind(&input); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("order.create", "invalid request body"))
	}
	if clientID, _ := identity(c); clientID != nil {
		input.ClientID = clientID
	}
	if err := h.validate.Struct(input); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("order.create", err.Error()))
	}

	detail, err := h.Orders.Create(c.Request().Context(), input)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// GetOrder returns an order with its items.
func (h *Handler) GetOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	detail, err := h.Orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) requireClient(c echo.Context) (int64, error) {
	clientID, _ := identity(c)
	if clientID == nil {
		return 0, domain.Invalid("handler.require_client", "client identity required")
	}
	return *clientID, nil
}

// GetLoyaltyBalance returns the caller's loyalty balance.
func (h *Handler) GetLoyaltyBalance(c echo.Context) error {
	clientID, err := h.requireClient(c)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	balance, err := h.Loyalty.GetBalance(c.Request().Context(), clientID)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"balance": balance})
}

// GetLoyaltyHistory returns the caller's loyalty ledger.
func (h *Handler) GetLoyaltyHistory(c echo.Context) error {
	clientID, err := h.requireClient(c)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	entries, err := h.Loyalty.History(c.Request().Context(), clientID)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, entries)
}
