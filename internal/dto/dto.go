package dto

import "storefront-gateway/internal/model"

// Backend wire shapes. Field names must match what the storefront backend
// actually sends and expects, quirks included (nested data envelopes,
// productQty vs quantity).

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	BusinessAddress string `json:"businessAddress"`
	BusinessName    string `json:"businessName"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

// GET /carts/{userId} wraps the snapshot in a "cart" envelope.
type CartEnvelope struct {
	Cart model.Cart `json:"cart"`
}

type AddToCartRequest struct {
	ProductID  string `json:"productId"`
	ProductQty int    `json:"productQty"`
	UserID     string `json:"userId"`
}

// POST /carts/add nests the reconciled line list one level deeper.
type AddToCartResponse struct {
	Data struct {
		ProductsInCart []model.CartLine `json:"productsInCart"`
	} `json:"data"`
}

type UpdateQuantityRequest struct {
	ProductID  string `json:"productId"`
	ProductQty int    `json:"productQty"`
	UserID     string `json:"userId"`
}

// DELETE /carts/remove may return the updated cart or a bare ack.
type RemoveFromCartResponse struct {
	Cart *model.Cart `json:"cart,omitempty"`
}

type VerifyCouponRequest struct {
	Code string `json:"code"`
}

type VerifyCouponResponse struct {
	Message            string `json:"message,omitempty"`
	DiscountPercentage int    `json:"discountPercentage,omitempty"`
}

type CheckoutRequest struct {
	UserID        string `json:"userId"`
	CartID        string `json:"cartId"`
	Address       string `json:"address"` // serialized model.Address
	Email         string `json:"email"`
	PaymentMethod string `json:"paymentMethod"`
	Name          string `json:"name"`
}

// The order-initiation payload is opaque to us; it is merged wholesale into
// the payment-initialization request.
type CheckoutResponse struct {
	Data map[string]any `json:"data"`
}

type ProcessPaymentResponse struct {
	Data struct {
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

type VerifyPaymentResponse struct {
	Status string `json:"status"`
}
