package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"tixwell/internal/models"

	"github.com/lib/pq"
)

// OrderRepository handles order data operations
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, event_id, total_amount, discount_amount, status, payment_deadline, payment_session_id, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.EventID,
		&order.TotalAmount,
		&order.DiscountAmount,
		&order.Status,
		&order.PaymentDeadline,
		&order.PaymentSessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Create creates a new pending order together with its immutable line items
func (r *OrderRepository) Create(order *models.Order, items []*models.OrderItem) (*models.Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := `
		INSERT INTO orders (user_id, event_id, total_amount, discount_amount, status, payment_deadline, payment_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderColumns

	created, err := scanOrder(tx.QueryRow(
		query,
		order.UserID,
		order.EventID,
		order.TotalAmount,
		order.DiscountAmount,
		models.OrderPending,
		order.PaymentDeadline,
		order.PaymentSessionID,
		now,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		err = tx.QueryRow(`
			INSERT INTO order_items (order_id, ticket_type_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			created.ID, item.TicketTypeID, item.Quantity, item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		item.OrderID = created.ID
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return created, nil
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetItems retrieves the order's line items in the order they were added
func (r *OrderRepository) GetItems(orderID int) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, ticket_type_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.TicketTypeID, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// SetPaymentSession stores the external checkout-session reference on the order
func (r *OrderRepository) SetPaymentSession(orderID int, sessionID string) error {
	result, err := r.db.Exec(
		`UPDATE orders SET payment_session_id = $2, updated_at = $3 WHERE id = $1`,
		orderID, sessionID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set payment session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

// Finalize marks the order paid and creates its tickets as a single atomic
// unit. The guarded status update serializes concurrent finalize attempts: the
// loser sees zero affected rows and gets ErrOrderAlreadyPaid (or
// ErrOrderNotPending when the order settled negatively), never a second ticket
// batch. Sold counters are bumped in the same transaction.
func (r *OrderRepository) Finalize(orderID int, paymentRef string, issues []models.TicketIssue) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.Exec(`
		UPDATE orders
		SET status = $2, payment_session_id = COALESCE(NULLIF($3, ''), payment_session_id), updated_at = $4
		WHERE id = $1 AND status = $5`,
		orderID, models.OrderPaid, paymentRef, now, models.OrderPending)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		var status models.OrderStatus
		err = tx.QueryRow(`SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
		if err != nil {
			if err == sql.ErrNoRows {
				return models.ErrOrderNotFound
			}
			return fmt.Errorf("failed to check order status: %w", err)
		}
		if status == models.OrderPaid {
			return models.ErrOrderAlreadyPaid
		}
		return models.ErrOrderNotPending
	}

	soldByType := make(map[int]int)
	for _, issue := range issues {
		ticket := issue.Ticket
		err = tx.QueryRow(`
			INSERT INTO tickets (order_id, ticket_type_id, event_id, code, qr_token, status, checked_in, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			ticket.OrderID, ticket.TicketTypeID, ticket.EventID,
			ticket.Code, ticket.QRToken, ticket.Status, ticket.CheckedIn, ticket.CreatedAt,
		).Scan(&ticket.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrDuplicateTicketCode
			}
			return fmt.Errorf("failed to create ticket: %w", err)
		}

		if issue.AttendeeID > 0 {
			_, err = tx.Exec(
				`UPDATE attendees SET ticket_id = $2 WHERE id = $1 AND ticket_id IS NULL`,
				issue.AttendeeID, ticket.ID)
			if err != nil {
				return fmt.Errorf("failed to bind attendee to ticket: %w", err)
			}
		}

		soldByType[ticket.TicketTypeID]++
	}

	for typeID, count := range soldByType {
		_, err = tx.Exec(
			`UPDATE ticket_types SET sold = sold + $2 WHERE id = $1`,
			typeID, count)
		if err != nil {
			return fmt.Errorf("failed to update sold counter: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order finalization: %w", err)
	}

	return nil
}

// SettleIfPending moves a pending order into the given negative terminal state.
// Returns true when the transition was applied, false when the order was
// already terminal.
func (r *OrderRepository) SettleIfPending(orderID int, status models.OrderStatus) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4`,
		orderID, status, time.Now(), models.OrderPending)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		var exists bool
		err = r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return false, models.ErrOrderNotFound
		}
		return false, nil
	}

	return true, nil
}

// GetOverdue retrieves pending orders whose payment deadline has passed
func (r *OrderRepository) GetOverdue(now time.Time) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND payment_deadline < $2
		ORDER BY payment_deadline ASC`

	rows, err := r.db.Query(query, models.OrderPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overdue orders: %w", err)
	}

	return orders, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
