package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"furnit-storefront/internal/checkout"
	"furnit-storefront/internal/dto"
	"furnit-storefront/internal/middleware"
	"furnit-storefront/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Districts lists the delivery districts with their sectors.
func (h *CheckoutHandler) Districts(c echo.Context) error {
	type district struct {
		Name    string   `json:"name"`
		Sectors []string `json:"sectors"`
	}
	districts := make([]district, 0, len(checkout.Districts()))
	for _, name := range checkout.Districts() {
		districts = append(districts, district{Name: name, Sectors: checkout.Sectors(name)})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"city":      checkout.DefaultCity,
		"districts": districts,
	})
}

func (h *CheckoutHandler) StartSession(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.checkoutService.Start(ctx, middleware.UserID(c))
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusCreated, view)
}

func (h *CheckoutHandler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.checkoutService.Get(ctx, middleware.UserID(c), c.Param("sessionID"))
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CheckoutHandler) UpdateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateCheckoutRequest
	if err := bind(c, &req, ""); err != nil {
		return err
	}

	view, err := h.checkoutService.Update(ctx, middleware.UserID(c), c.Param("sessionID"), req.ToUpdate())
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// CheckField runs the on-blur check for one field; the verdict lands in field_errors.
func (h *CheckoutHandler) CheckField(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckFieldRequest
	if err := bind(c, &req, ""); err != nil {
		return err
	}

	view, err := h.checkoutService.CheckField(ctx, middleware.UserID(c), c.Param("sessionID"), req.Field)
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CheckoutHandler) Advance(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.checkoutService.Advance(ctx, middleware.UserID(c), c.Param("sessionID"))
	return h.respond(c, view, err)
}

func (h *CheckoutHandler) Retreat(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.checkoutService.Retreat(ctx, middleware.UserID(c), c.Param("sessionID"))
	return h.respond(c, view, err)
}

func (h *CheckoutHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.checkoutService.Submit(ctx, middleware.UserID(c), c.Param("sessionID"))
	return h.respond(c, view, err)
}

// respond sends the session view even when the transition was rejected,
// so the client can render field errors next to the form.
func (h *CheckoutHandler) respond(c echo.Context, view *service.CheckoutView, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, view)
	}
	status, msg, ok := storefrontStatus(err)
	if !ok || view == nil {
		return storefrontError(err)
	}
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("checkout %s: %v", view.ID, err)
	}
	return c.JSON(status, dto.CheckoutErrorResponse{
		Success:  false,
		Error:    msg,
		Checkout: view,
	})
}
