package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-gateway/internal/apiclient"
	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/checkout"
	"storefront-gateway/internal/notify"
	"storefront-gateway/internal/session"
)

// Every UI-facing response uses this envelope so toasts ride along with the
// payload and a failure carries exactly one notification.
type response struct {
	Data     any             `json:"data,omitempty"`
	Toasts   []notify.Notice `json:"toasts,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
}

func ok(c echo.Context, buf *notify.Buffer, data any) error {
	return c.JSON(http.StatusOK, response{Data: data, Toasts: buf.Drain()})
}

func fail(c echo.Context, buf *notify.Buffer, err error, fallback string) error {
	status, msg, redirect := classify(err, fallback)
	buf.Error(msg)
	return c.JSON(status, response{Toasts: buf.Drain(), Redirect: redirect})
}

// classify maps the error taxonomy to a status, a user-facing message and an
// optional view the UI should move to. Backend messages are surfaced
// verbatim when present; network failures get the generic try-again toast.
func classify(err error, fallback string) (status int, msg, redirect string) {
	var ve *checkout.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Msg, ""
	}
	if errors.Is(err, cart.ErrInvalidQuantity) {
		return http.StatusBadRequest, "Quantity must be between 1 and 10", ""
	}
	if errors.Is(err, cart.ErrAuthRequired) {
		return http.StatusUnauthorized, "Please create an account to continue", "/signup"
	}
	var ae *session.AuthError
	if errors.As(err, &ae) {
		return http.StatusUnauthorized, ae.Reason, "/login"
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if apiErr.IsNetwork() {
			return http.StatusBadGateway, "Something went wrong. Please try again.", ""
		}
		if apiErr.Message != "" {
			msg = apiErr.Message
		} else {
			msg = fallback
		}
		return apiErr.Status, msg, ""
	}
	return http.StatusInternalServerError, fallback, ""
}
