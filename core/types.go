package core

import (
	"math"
	"strconv"
	"time"
)

// User is the profile of the authenticated customer as returned by the
// backend on login, register and profile reads.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName returns the display name for the user.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Product is a read-only catalog entry. Prices are never mutated
// client-side.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	InStock     bool    `json:"inStock"`
}

// CartItem is a single line in the cart. Subtotal is computed by the
// server and trusted verbatim; the client only sums subtotals for the
// displayed grand total.
type CartItem struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// Cart mirrors the server-held cart for the current session. The server
// copy is authoritative: every mutation response replaces the whole
// item list.
type Cart struct {
	Items []CartItem `json:"items"`
}

// IsEmpty reports whether the cart has no items. An empty cart cannot
// be checked out.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Total sums the server-computed item subtotals. The result is not
// stored back into the cart.
func (c *Cart) Total() float64 {
	if c == nil {
		return 0
	}
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal
	}
	return total
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	if c == nil {
		return 0
	}
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// DisplayTotal renders the grand total rounded to currency precision.
// Rounding happens only here, at the point of display.
func (c *Cart) DisplayTotal() string {
	rounded := math.Round(c.Total()*100) / 100
	return strconv.FormatFloat(rounded, 'f', 2, 64)
}

// OrderStatus is the lifecycle state of an order. Transitions are
// one-directional: CREATED -> CONFIRMED (server-driven) or
// CREATED -> CANCELLED (client cancel). CONFIRMED and CANCELLED are
// terminal.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further client-driven transition is
// allowed from this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is an immutable historical record snapshotted from the cart at
// checkout time. It is never deleted, only status-mutated.
type Order struct {
	ID          int64       `json:"id"`
	Items       []CartItem  `json:"items"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// StockLevel is the inventory indication for a single product.
type StockLevel struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	InStock   bool  `json:"inStock"`
}
