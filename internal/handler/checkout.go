package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/checkout"
	"storefront-gateway/internal/coupon"
	"storefront-gateway/internal/model"
	"storefront-gateway/internal/notify"
	"storefront-gateway/internal/session"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	carts        *cart.Store
	coupons      *coupon.Resolver
	sessions     *session.Store
}

func NewCheckoutHandler(
	orchestrator *checkout.Orchestrator,
	carts *cart.Store,
	coupons *coupon.Resolver,
	sessions *session.Store,
) *CheckoutHandler {
	return &CheckoutHandler{
		orchestrator: orchestrator,
		carts:        carts,
		coupons:      coupons,
		sessions:     sessions,
	}
}

type addressRequest struct {
	Address model.Address `json:"address"`
	Save    bool          `json:"save"`
}

func (h *CheckoutHandler) PutAddress(c echo.Context) error {
	buf := notify.NewBuffer()

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.orchestrator.SetAddress(req.Address, req.Save); err != nil {
		return fail(c, buf, err, "Failed to save address")
	}
	return ok(c, buf, map[string]any{
		"ready":  req.Address.Valid(),
		"status": h.orchestrator.Status(),
	})
}

func (h *CheckoutHandler) GetAddress(c echo.Context) error {
	buf := notify.NewBuffer()

	addr, save, err := h.orchestrator.SavedAddress()
	if err != nil {
		return fail(c, buf, err, "Failed to load saved address")
	}
	return ok(c, buf, addressRequest{Address: addr, Save: save})
}

type summaryResponse struct {
	Subtotal        float64 `json:"subtotal"`
	Shipping        float64 `json:"shipping"`
	DiscountPercent int     `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	Total           float64 `json:"total"`
}

// Summary prices the current cart with whatever discount is applied.
func (h *CheckoutHandler) Summary(c echo.Context) error {
	buf := notify.NewBuffer()

	snapshot := h.carts.Snapshot()
	discount := h.coupons.Current()
	return ok(c, buf, summaryResponse{
		Subtotal:        snapshot.Total,
		Shipping:        checkout.Shipping(snapshot.Total),
		DiscountPercent: discount.Percentage,
		DiscountAmount:  checkout.DiscountAmount(snapshot.Total, discount.Percentage),
		Total:           checkout.Total(snapshot.Total, discount.Percentage),
	})
}

type submitRequest struct {
	Address model.Address `json:"address"`
}

// Submit runs order creation and payment initialization; the UI redirects
// the buyer to the returned authorization URL.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	buf := notify.NewBuffer()

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess := h.sessions.Session()
	if sess.UserID == "" {
		return fail(c, buf, cart.ErrAuthRequired, "")
	}

	authorizationURL, err := h.orchestrator.Submit(c.Request().Context(), checkout.SubmitInput{
		Session: sess,
		Cart:    h.carts.Snapshot(),
		Address: req.Address,
	})
	if err != nil {
		return fail(c, buf, err, "Error initializing payment.")
	}
	return ok(c, buf, map[string]string{"authorizationUrl": authorizationURL})
}

type paymentReturnResponse struct {
	Reference            string          `json:"reference"`
	Status               checkout.Status `json:"status"`
	Replayed             bool            `json:"replayed,omitempty"`
	RedirectTo           string          `json:"redirectTo,omitempty"`
	RedirectAfterSeconds int             `json:"redirectAfterSeconds,omitempty"`
}

// PaymentReturn is the callback the payment gateway redirects the buyer to.
// It resumes verification from the reference query parameter; everything the
// redirect destroyed in memory is recovered from it and the local store.
func (h *CheckoutHandler) PaymentReturn(c echo.Context) error {
	buf := notify.NewBuffer()

	reference := c.QueryParam("reference")
	if reference == "" {
		reference = c.QueryParam("trxref")
	}
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing payment reference")
	}

	result := h.orchestrator.VerifyReturn(c.Request().Context(), reference)
	if result.Status == checkout.StatusPaymentConfirmed {
		buf.Success("Payment Successful!")
	} else {
		buf.Error("Payment failed or could not be verified. Your cart is untouched; please retry or contact support.")
	}
	return ok(c, buf, paymentReturnResponse{
		Reference:            result.Reference,
		Status:               result.Status,
		Replayed:             result.Replayed,
		RedirectTo:           result.RedirectTo,
		RedirectAfterSeconds: int(result.RedirectAfter.Seconds()),
	})
}

func (h *CheckoutHandler) Orders(c echo.Context) error {
	buf := notify.NewBuffer()

	sess := h.sessions.Session()
	if sess.UserID == "" {
		return fail(c, buf, cart.ErrAuthRequired, "")
	}

	orders, err := h.orchestrator.FetchOrders(c.Request().Context(), sess.UserID)
	if err != nil {
		return fail(c, buf, err, "Failed to load orders")
	}
	return ok(c, buf, orders)
}
