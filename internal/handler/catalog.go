package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/notify"
)

type CatalogHandler struct {
	products *catalog.Service
}

func NewCatalogHandler(products *catalog.Service) *CatalogHandler {
	return &CatalogHandler{products: products}
}

func (h *CatalogHandler) List(c echo.Context) error {
	buf := notify.NewBuffer()

	products, err := h.products.Products(c.Request().Context())
	if err != nil {
		// The initiating view went away; nobody is left to tell.
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fail(c, buf, err, "Failed to fetch products")
	}
	return ok(c, buf, products)
}

func (h *CatalogHandler) Get(c echo.Context) error {
	buf := notify.NewBuffer()

	product, err := h.products.ProductByID(c.Request().Context(), c.Param("productId"))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fail(c, buf, err, "Product not found")
	}
	return ok(c, buf, product)
}
