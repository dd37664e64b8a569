package services

import (
	"fmt"

	"tixwell/internal/clock"
	"tixwell/internal/models"

	"github.com/google/uuid"
)

// TicketIssuer converts a paid order's line items into individual tickets.
// Issuance is deterministic: tickets come out in order-item insertion order,
// and the order's unassigned attendees are bound to the leading tickets in
// lock-step.
type TicketIssuer struct {
	clock clock.Clock
}

// NewTicketIssuer creates a new ticket issuer
func NewTicketIssuer(clk clock.Clock) *TicketIssuer {
	return &TicketIssuer{clock: clk}
}

// BuildBatch produces one planned ticket per purchased unit. Zero-quantity
// items contribute nothing, an itemless order yields an empty batch, and a
// surplus of attendees or tickets on either side is tolerated: the extras
// simply stay unassigned.
func (i *TicketIssuer) BuildBatch(order *models.Order, items []*models.OrderItem, unassigned []*models.Attendee) ([]models.TicketIssue, error) {
	var issues []models.TicketIssue
	now := i.clock.Now()

	for _, item := range items {
		for n := 0; n < item.Quantity; n++ {
			code, err := models.GenerateTicketCode()
			if err != nil {
				return nil, fmt.Errorf("failed to generate ticket code: %w", err)
			}

			ticket := &models.Ticket{
				OrderID:      order.ID,
				TicketTypeID: item.TicketTypeID,
				EventID:      order.EventID,
				Code:         code,
				QRToken:      uuid.NewString(),
				Status:       models.TicketValid,
				CheckedIn:    false,
				CreatedAt:    now,
			}

			issue := models.TicketIssue{Ticket: ticket}
			if idx := len(issues); idx < len(unassigned) {
				issue.AttendeeID = unassigned[idx].ID
			}

			issues = append(issues, issue)
		}
	}

	return issues, nil
}
