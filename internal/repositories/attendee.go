package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tixwell/internal/models"
)

// AttendeeRepository handles attendee and custom-field data operations
type AttendeeRepository struct {
	db *sql.DB
}

// NewAttendeeRepository creates a new attendee repository
func NewAttendeeRepository(db *sql.DB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

const attendeeColumns = `id, order_id, event_id, ticket_id, first_name, last_name, email, status, fields, created_at`

func scanAttendee(row interface{ Scan(...interface{}) error }) (*models.Attendee, error) {
	attendee := &models.Attendee{}
	var fieldsJSON []byte
	err := row.Scan(
		&attendee.ID,
		&attendee.OrderID,
		&attendee.EventID,
		&attendee.TicketID,
		&attendee.FirstName,
		&attendee.LastName,
		&attendee.Email,
		&attendee.Status,
		&fieldsJSON,
		&attendee.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &attendee.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode attendee fields: %w", err)
		}
	}

	return attendee, nil
}

// Create inserts a new attendee record
func (r *AttendeeRepository) Create(attendee *models.Attendee) (*models.Attendee, error) {
	fieldsJSON, err := json.Marshal(attendee.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attendee fields: %w", err)
	}

	query := `
		INSERT INTO attendees (order_id, event_id, ticket_id, first_name, last_name, email, status, fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + attendeeColumns

	created, err := scanAttendee(r.db.QueryRow(
		query,
		attendee.OrderID,
		attendee.EventID,
		attendee.TicketID,
		attendee.FirstName,
		attendee.LastName,
		attendee.Email,
		models.AttendeeNotCheckedIn,
		fieldsJSON,
		time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create attendee: %w", err)
	}

	return created, nil
}

// GetByID retrieves an attendee by ID
func (r *AttendeeRepository) GetByID(id int) (*models.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = $1`

	attendee, err := scanAttendee(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}

	return attendee, nil
}

// GetUnassignedByOrder retrieves the order's attendees that are not yet bound
// to a ticket, preserving their creation order.
func (r *AttendeeRepository) GetUnassignedByOrder(orderID int) ([]*models.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE order_id = $1 AND ticket_id IS NULL
		ORDER BY id ASC`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unassigned attendees: %w", err)
	}
	defer rows.Close()

	var attendees []*models.Attendee
	for rows.Next() {
		attendee, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, attendee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}

	return attendees, nil
}

// GetEventStart returns the start time of the event an attendee belongs to
func (r *AttendeeRepository) GetEventStart(attendeeID int) (time.Time, error) {
	var start time.Time
	err := r.db.QueryRow(`
		SELECT e.start_date
		FROM attendees a
		JOIN events e ON a.event_id = e.id
		WHERE a.id = $1`, attendeeID).Scan(&start)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, models.ErrAttendeeNotFound
		}
		return time.Time{}, fmt.Errorf("failed to get attendee event: %w", err)
	}

	return start, nil
}

// Replace destroys the old attendee record and creates a fresh one bound to
// the same ticket, order and event, in one transaction. The old attendee's
// custom-field answers are not carried over.
func (r *AttendeeRepository) Replace(oldID int, replacement *models.Attendee) (*models.Attendee, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := scanAttendee(tx.QueryRow(`SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, oldID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("failed to get attendee for replacement: %w", err)
	}

	if _, err = tx.Exec(`DELETE FROM attendees WHERE id = $1`, oldID); err != nil {
		return nil, fmt.Errorf("failed to delete attendee: %w", err)
	}

	query := `
		INSERT INTO attendees (order_id, event_id, ticket_id, first_name, last_name, email, status, fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '[]', $8)
		RETURNING ` + attendeeColumns

	created, err := scanAttendee(tx.QueryRow(
		query,
		old.OrderID,
		old.EventID,
		old.TicketID,
		replacement.FirstName,
		replacement.LastName,
		replacement.Email,
		models.AttendeeNotCheckedIn,
		time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create replacement attendee: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attendee replacement: %w", err)
	}

	return created, nil
}

// GetFieldDefinitions retrieves the custom-field schema for an event, in
// stored display order. Definitions scoped to a different ticket type are
// filtered out; event-wide definitions always apply.
func (r *AttendeeRepository) GetFieldDefinitions(eventID int, ticketTypeID *int) ([]*models.EventCustomFieldDefinition, error) {
	query := `
		SELECT id, event_id, ticket_type_id, name, label, type, required, position
		FROM event_custom_fields
		WHERE event_id = $1 AND (ticket_type_id IS NULL OR ticket_type_id = $2)
		ORDER BY position ASC, id ASC`

	var typeArg interface{}
	if ticketTypeID != nil {
		typeArg = *ticketTypeID
	}

	rows, err := r.db.Query(query, eventID, typeArg)
	if err != nil {
		return nil, fmt.Errorf("failed to get custom field definitions: %w", err)
	}
	defer rows.Close()

	var defs []*models.EventCustomFieldDefinition
	for rows.Next() {
		def := &models.EventCustomFieldDefinition{}
		err := rows.Scan(&def.ID, &def.EventID, &def.TicketTypeID, &def.Name, &def.Label, &def.Type, &def.Required, &def.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom field definition: %w", err)
		}
		defs = append(defs, def)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom field definitions: %w", err)
	}

	return defs, nil
}
