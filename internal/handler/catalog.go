package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"furnit-storefront/internal/service"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalogService.ListProducts(ctx, c.QueryParam("category"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.catalogService.GetProduct(ctx, c.Param("productID"))
	if err != nil {
		return storefrontError(err)
	}

	return c.JSON(http.StatusOK, product)
}
