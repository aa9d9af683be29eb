package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront-gateway/internal/coupon"
	"storefront-gateway/internal/notify"
)

type CouponHandler struct {
	coupons *coupon.Resolver
}

func NewCouponHandler(coupons *coupon.Resolver) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

type verifyCouponRequest struct {
	Code string `json:"code"`
}

func (h *CouponHandler) Verify(c echo.Context) error {
	buf := notify.NewBuffer()

	var req verifyCouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Code) == "" {
		h.coupons.Reset()
		return ok(c, buf, h.coupons.Current())
	}

	discount, err := h.coupons.Verify(c.Request().Context(), req.Code)
	switch {
	case err != nil:
		buf.Error("Failed to apply coupon")
	case discount.Percentage == 0:
		buf.Error(discount.Message)
	default:
		buf.Success("Coupon applied successfully!")
	}
	return ok(c, buf, discount)
}
