package models

import (
	"errors"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderExpired OrderStatus = "expired"
	OrderAborted OrderStatus = "aborted"
)

// Order represents one checkout attempt. Orders are never deleted; they are
// retained for audit once they reach a terminal state.
type Order struct {
	ID               int         `json:"id" db:"id"`
	UserID           int         `json:"user_id" db:"user_id"`
	EventID          int         `json:"event_id" db:"event_id"`
	TotalAmount      int         `json:"total_amount" db:"total_amount"` // Amount in cents
	DiscountAmount   int         `json:"discount_amount" db:"discount_amount"`
	Status           OrderStatus `json:"status" db:"status"`
	PaymentDeadline  time.Time   `json:"payment_deadline" db:"payment_deadline"`
	PaymentSessionID string      `json:"payment_session_id" db:"payment_session_id"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem is a single (ticket type, quantity, unit price) line within an
// order. Items are immutable after order creation.
type OrderItem struct {
	ID           int `json:"id" db:"id"`
	OrderID      int `json:"order_id" db:"order_id"`
	TicketTypeID int `json:"ticket_type_id" db:"ticket_type_id"`
	Quantity     int `json:"quantity" db:"quantity"`
	UnitPrice    int `json:"unit_price" db:"unit_price"` // Price in cents
}

// OrderCreateRequest represents the data needed to create a new order
type OrderCreateRequest struct {
	UserID   int                `json:"user_id"`
	EventID  int                `json:"event_id"`
	Items    []OrderItemRequest `json:"items"`
	Discount int                `json:"discount"`
}

// OrderItemRequest is one requested line of an order
type OrderItemRequest struct {
	TicketTypeID int `json:"ticket_type_id"`
	Quantity     int `json:"quantity"`
}

// Validate validates order creation data
func (req *OrderCreateRequest) Validate() error {
	if req.UserID <= 0 {
		return errors.New("user id is required")
	}

	if req.EventID <= 0 {
		return errors.New("event id is required")
	}

	if req.Discount < 0 {
		return errors.New("discount cannot be negative")
	}

	for _, item := range req.Items {
		if item.TicketTypeID <= 0 {
			return errors.New("ticket type id is required for every item")
		}
		if item.Quantity < 0 {
			return errors.New("item quantity cannot be negative")
		}
	}

	return nil
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}

// IsPaid returns true if the order has been paid
func (o *Order) IsPaid() bool {
	return o.Status == OrderPaid
}

// IsTerminal returns true once the order reached a final state. A terminal
// order never transitions again.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderPaid, OrderExpired, OrderAborted:
		return true
	}
	return false
}

// GetStatusDisplayName returns a human-readable status name
func (o *Order) GetStatusDisplayName() string {
	switch o.Status {
	case OrderPending:
		return "Pending Payment"
	case OrderPaid:
		return "Paid"
	case OrderExpired:
		return "Expired"
	case OrderAborted:
		return "Aborted"
	default:
		return string(o.Status)
	}
}

// TotalAmountInCurrency returns the total amount in the main currency as a float
func (o *Order) TotalAmountInCurrency() float64 {
	return float64(o.TotalAmount) / 100.0
}
