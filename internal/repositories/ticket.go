package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"tixwell/internal/models"
)

// TicketRepository handles ticket and ticket type data operations
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, order_id, ticket_type_id, event_id, code, qr_token, status, checked_in, checked_in_at, created_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.OrderID,
		&ticket.TicketTypeID,
		&ticket.EventID,
		&ticket.Code,
		&ticket.QRToken,
		&ticket.Status,
		&ticket.CheckedIn,
		&ticket.CheckedInAt,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetByCode retrieves a ticket by its human-presentable code
func (r *TicketRepository) GetByCode(code string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE code = $1`

	ticket, err := scanTicket(r.db.QueryRow(query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket by code: %w", err)
	}

	return ticket, nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(id int) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// GetByOrder retrieves all tickets for an order in issuance order
func (r *TicketRepository) GetByOrder(orderID int) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE order_id = $1 ORDER BY id ASC`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// MarkCheckedIn sets the checked-in flag and timestamp. The guard on the
// checked_in column makes a concurrent double scan lose cleanly.
func (r *TicketRepository) MarkCheckedIn(id int, at time.Time) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE tickets SET checked_in = TRUE, checked_in_at = $2
		WHERE id = $1 AND status = $3 AND checked_in = FALSE`,
		id, at, models.TicketValid)
	if err != nil {
		return false, fmt.Errorf("failed to mark ticket checked in: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// GetTicketTypeByID retrieves a ticket type by ID
func (r *TicketRepository) GetTicketTypeByID(id int) (*models.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, sold, created_at
		FROM ticket_types
		WHERE id = $1`

	tt := &models.TicketType{}
	err := r.db.QueryRow(query, id).Scan(
		&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quantity, &tt.Sold, &tt.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("ticket type with id %d not found", id)
		}
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	return tt, nil
}
