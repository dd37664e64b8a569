package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketValid       TicketStatus = "valid"
	TicketCancelled   TicketStatus = "cancelled"
	TicketRefunded    TicketStatus = "refunded"
	TicketTransferred TicketStatus = "transferred"
)

// TicketType represents a purchasable category of tickets for an event
type TicketType struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	Price     int       `json:"price" db:"price"` // Price in cents
	Quantity  int       `json:"quantity" db:"quantity"`
	Sold      int       `json:"sold" db:"sold"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Ticket represents one individually admissible unit. The checked-in flag is
// orthogonal to status: a valid ticket may or may not have been scanned.
type Ticket struct {
	ID           int          `json:"id" db:"id"`
	OrderID      int          `json:"order_id" db:"order_id"`
	TicketTypeID int          `json:"ticket_type_id" db:"ticket_type_id"`
	EventID      int          `json:"event_id" db:"event_id"`
	Code         string       `json:"code" db:"code"`
	QRToken      string       `json:"qr_token" db:"qr_token"`
	Status       TicketStatus `json:"status" db:"status"`
	CheckedIn    bool         `json:"checked_in" db:"checked_in"`
	CheckedInAt  *time.Time   `json:"checked_in_at" db:"checked_in_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// TicketIssue pairs a freshly generated ticket with the attendee that should
// be bound to it. AttendeeID is zero when the ticket stays unassigned.
type TicketIssue struct {
	Ticket     *Ticket
	AttendeeID int
}

// IsValid returns true if the ticket status is valid
func (t *Ticket) IsValid() bool {
	return t.Status == TicketValid
}

// CanBeScanned returns true if the ticket can still be checked in
func (t *Ticket) CanBeScanned() bool {
	return t.Status == TicketValid && !t.CheckedIn
}

// Validate validates the ticket data
func (t *Ticket) Validate() error {
	if t.Code == "" {
		return errors.New("ticket code is required")
	}

	if t.QRToken == "" {
		return errors.New("qr token is required")
	}

	switch t.Status {
	case TicketValid, TicketCancelled, TicketRefunded, TicketTransferred:
	default:
		return errors.New("invalid ticket status")
	}

	return nil
}

// Available returns the number of tickets still purchasable
func (tt *TicketType) Available() int {
	available := tt.Quantity - tt.Sold
	if available < 0 {
		return 0
	}
	return available
}

// IsSoldOut returns true if all tickets are sold
func (tt *TicketType) IsSoldOut() bool {
	return tt.Sold >= tt.Quantity
}

// PriceInCurrency returns the price in the main currency as a float
func (tt *TicketType) PriceInCurrency() float64 {
	return float64(tt.Price) / 100.0
}

const (
	ticketCodePrefix   = "TIX-"
	ticketCodeLength   = 12
	ticketCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// GenerateTicketCode generates a human-presentable ticket code: a short prefix
// followed by 12 case-insensitive alphanumeric characters from crypto/rand.
// Uniqueness is additionally enforced by a constraint at the storage layer.
func GenerateTicketCode() (string, error) {
	buf := make([]byte, ticketCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ticket code: %w", err)
	}

	for i, b := range buf {
		buf[i] = ticketCodeAlphabet[int(b)%len(ticketCodeAlphabet)]
	}

	return ticketCodePrefix + string(buf), nil
}
