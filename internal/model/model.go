package model

import (
	"strings"
	"time"
)

// Session is the authenticated identity the gateway holds for the current
// user. Token and profile are persisted to the local store so a restart
// hydrates back into the same session.
type Session struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	TokenExpiry time.Time `json:"tokenExpiry"`
}

type Profile struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Cart is the backend's cart snapshot. The backend owns merge semantics;
// the gateway only caches what the last response said.
type Cart struct {
	CartID         string     `json:"cartId"`
	Total          float64    `json:"total"`
	ProductsInCart []CartLine `json:"productsInCart"`
}

type CartLine struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Img       []string `json:"img"`
	Category  string   `json:"category"`
}

type Product struct {
	ProductID   string   `json:"productId"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Img         []string `json:"img"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	InStock     bool     `json:"inStock,omitempty"`
}

// Discount is ephemeral checkout state, never persisted. A zero Percentage
// means no discount is in effect.
type Discount struct {
	Code       string `json:"code"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// Valid reports whether every address field carries something other than
// whitespace. Checkout cannot be submitted without a valid address.
func (a Address) Valid() bool {
	for _, v := range []string{a.Street, a.City, a.State, a.Pincode, a.Phone} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Order is display-only on this side; state changes happen on the backend.
type Order struct {
	OrderID          string     `json:"orderId"`
	Status           string     `json:"status"`
	PaymentReference string     `json:"paymentReference,omitempty"`
	Price            float64    `json:"price"`
	Products         []CartLine `json:"products"`
	CreatedAt        time.Time  `json:"createdAt"`
}
