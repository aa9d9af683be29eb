package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/notify"
	"storefront-gateway/internal/session"
)

type CartHandler struct {
	carts    *cart.Store
	sessions *session.Store
}

func NewCartHandler(carts *cart.Store, sessions *session.Store) *CartHandler {
	return &CartHandler{carts: carts, sessions: sessions}
}

func (h *CartHandler) Get(c echo.Context) error {
	buf := notify.NewBuffer()

	sess := h.sessions.Session()
	if sess.UserID == "" {
		return fail(c, buf, cart.ErrAuthRequired, "")
	}

	snapshot, err := h.carts.Fetch(c.Request().Context(), sess.UserID)
	if err != nil {
		return fail(c, buf, err, "Failed to load cart")
	}
	return ok(c, buf, snapshot)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(c echo.Context) error {
	buf := notify.NewBuffer()

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess := h.sessions.Session()
	lines, err := h.carts.Add(c.Request().Context(), sess.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, buf, err, "Failed to add to cart")
	}

	buf.Success("Item added to cart!")
	return ok(c, buf, lines)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	buf := notify.NewBuffer()

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess := h.sessions.Session()
	err := h.carts.UpdateQuantity(c.Request().Context(), sess.UserID, c.Param("productId"), req.Quantity)
	if err != nil {
		return fail(c, buf, err, "Failed to update quantity")
	}

	buf.Success("Quantity updated")
	return ok(c, buf, h.carts.Snapshot())
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	buf := notify.NewBuffer()

	sess := h.sessions.Session()
	if err := h.carts.Remove(c.Request().Context(), sess.UserID, c.Param("productId")); err != nil {
		return fail(c, buf, err, "Failed to remove item")
	}

	buf.Success("Item removed from cart")
	return ok(c, buf, h.carts.Snapshot())
}
