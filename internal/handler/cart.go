package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"furnit-storefront/internal/dto"
	"furnit-storefront/internal/middleware"
	"furnit-storefront/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.cartService.Get(ctx, middleware.UserID(c))
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := bind(c, &req, ""); err != nil {
		return err
	}

	view, err := h.cartService.AddItem(ctx, middleware.UserID(c), req.ProductID)
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateCartItemRequest
	if err := bind(c, &req, ""); err != nil {
		return err
	}

	view, err := h.cartService.UpdateQuantity(ctx, middleware.UserID(c), c.Param("productID"), req.Delta)
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.cartService.RemoveItem(ctx, middleware.UserID(c), c.Param("productID"))
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.Clear(ctx, middleware.UserID(c)); err != nil {
		return storefrontError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
