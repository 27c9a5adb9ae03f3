package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
)

type setTariffRequest struct {
	WilayaID     int64  `json:"wilaya_id" validate:"required,gt=0"`
	DeliveryType string `json:"delivery_type" validate:"required"`
	Price        int64  `json:"price" validate:"gte=0"`
}

// AdminSetTariff sets (and activates) the price for one delivery lane.
func (h *Handler) AdminSetTariff(c echo.Context) error {
	var req setTariffRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("location.set_tariff", "invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("location.set_tariff", err.Error()))
	}

	tariff, err := h.Location.SetTariff(c.Request().Context(), req.WilayaID, domain.DeliveryType(req.DeliveryType), req.Price)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tariff)
}

type tariffActivationRequest struct {
	WilayaID     int64  `json:"wilaya_id" validate:"required,gt=0"`
	DeliveryType string `json:"delivery_type" validate:"required"`
	Active       bool   `json:"active"`
}

// AdminSetTariffActive toggles one delivery lane, cascading the wilaya flag.
func (h *Handler) AdminSetTariffActive(c echo.Context) error {
	var req tariffActivationRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("location.set_delivery_type_active", "invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("location.set_delivery_type_active", err.Error()))
	}

	if err := h.Location.SetDeliveryTypeActive(c.Request().Context(), req.WilayaID, domain.DeliveryType(req.DeliveryType), req.Active); err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminSetWilayaActive toggles delivery for a whole wilaya.
func (h *Handler) AdminSetWilayaActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("location.set_wilaya_active", "invalid request body"))
	}

	if err := h.Location.SetWilayaActive(c.Request().Context(), id, req.Active); err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminListTariffs returns all tariffs of a wilaya, active or not.
func (h *Handler) AdminListTariffs(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	tariffs, err := h.Location.ListTariffs(c.Request().Context(), id)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tariffs)
}

type createPromoRequest struct {
	Code          string     `json:"code" validate:"required"`
	Type          string     `json:"type" validate:"required"`
	UsageType     string     `json:"usage_type" validate:"required"`
	DiscountValue int64      `json:"discount_value" validate:"gte=0"`
	ClientID      *int64     `json:"client_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// AdminCreatePromo registers a new promo code.
func (h *Handler) AdminCreatePromo(c echo.Context) error {
	var req createPromoRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("promo.create", "invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("promo.create", err.Error()))
	}

	promo, err := h.Promo.Create(c.Request().Context(), repository.CreatePromoParams{
		Code:          req.Code,
		Type:          domain.PromoType(req.Type),
		UsageType:     domain.PromoUsageType(req.UsageType),
		DiscountValue: req.DiscountValue,
		ClientID:      req.ClientID,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, promo)
}

// AdminListPromos returns all promo codes.
func (h *Handler) AdminListPromos(c echo.Context) error {
	promos, err := h.Promo.List(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, promos)
}

// AdminDeactivatePromo retires a promo code.
func (h *Handler) AdminDeactivatePromo(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	if err := h.Promo.Deactivate(c.Request().Context(), id); err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminListOrders returns orders in a given status.
func (h *Handler) AdminListOrders(c echo.Context) error {
	status := domain.OrderStatus(c.QueryParam("status"))
	orders, err := h.Orders.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// AdminUpdateOrderStatus moves an order along its lifecycle.
func (h *Handler) AdminUpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("order.update_status", "invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return ErrorResponse(c, h.logger, domain.Invalid("order.update_status", err.Error()))
	}

	order, err := h.Orders.UpdateStatus(c.Request().Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, order)
}

// AdminCancelOrder cancels an order and restores its stock.
func (h *Handler) AdminCancelOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	detail, err := h.Orders.Cancel(c.Request().Context(), id)
	if err != nil {
		return ErrorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, detail)
}
