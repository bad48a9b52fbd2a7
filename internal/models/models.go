package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Product attributes are immutable after creation; the id is supplied by the
// caller on insert, not generated.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
	Details     pq.StringArray  `json:"details"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CartLine is one (user, product, quantity) record. At most one line exists
// per (userId, productId); a quantity of zero deletes the line instead of
// being stored.
type CartLine struct {
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Qty       int       `json:"qty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CartItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	ImageURL  string          `json:"imageUrl"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartView is the derived, priced snapshot of a user's cart. It is recomputed
// on every read and never persisted or cached.
type CartView struct {
	Items      []CartItem      `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

type Customer struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID int64  `json:"userId"`
}

// Receipt exists only in the checkout response. The order id is random and
// never stored; there is no order history.
type Receipt struct {
	OrderID   string          `json:"orderId"`
	Timestamp time.Time       `json:"timestamp"`
	Customer  Customer        `json:"customer"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	Items     []CartItem      `json:"items"`
}
