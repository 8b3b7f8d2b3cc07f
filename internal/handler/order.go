package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"furnit-storefront/internal/middleware"
	"furnit-storefront/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListOrders(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, middleware.UserID(c), c.Param("orderID"))
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, order)
}
