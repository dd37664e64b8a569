package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// AttendeeStatus mirrors the check-in state on the attendee record
type AttendeeStatus string

const (
	AttendeeNotCheckedIn AttendeeStatus = "not_checked_in"
	AttendeeCheckedIn    AttendeeStatus = "checked_in"
	AttendeeCancelled    AttendeeStatus = "cancelled"
)

// Attendee represents a named participant. An attendee belongs to exactly one
// order and is bound to at most one ticket at a time; an attendee without a
// ticket is "unassigned" and waits for issuance to pick it up.
type Attendee struct {
	ID        int                `json:"id" db:"id"`
	OrderID   int                `json:"order_id" db:"order_id"`
	EventID   int                `json:"event_id" db:"event_id"`
	TicketID  *int               `json:"ticket_id" db:"ticket_id"`
	FirstName string             `json:"first_name" db:"first_name"`
	LastName  string             `json:"last_name" db:"last_name"`
	Email     string             `json:"email" db:"email"`
	Status    AttendeeStatus     `json:"status" db:"status"`
	Fields    []CustomFieldValue `json:"fields"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
}

// CustomFieldValue is one submitted name/value answer. Value is a pointer so
// "not supplied" and "supplied empty" can be told apart.
type CustomFieldValue struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

// EventCustomFieldDefinition is a per-event (optionally per-ticket-type) field
// schema. Definitions are read-only input to attendee validation.
type EventCustomFieldDefinition struct {
	ID           int    `json:"id" db:"id"`
	EventID      int    `json:"event_id" db:"event_id"`
	TicketTypeID *int   `json:"ticket_type_id" db:"ticket_type_id"`
	Name         string `json:"name" db:"name"`
	Label        string `json:"label" db:"label"`
	Type         string `json:"type" db:"type"`
	Required     bool   `json:"required" db:"required"`
	Position     int    `json:"position" db:"position"`
}

// AttendeeCreateRequest represents the data needed to create an attendee
type AttendeeCreateRequest struct {
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Email     string             `json:"email"`
	Fields    []CustomFieldValue `json:"fields"`
}

// TransferRequest carries the new holder's details for a ticket transfer
type TransferRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

var attendeeEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates attendee creation data
func (req *AttendeeCreateRequest) Validate() error {
	return validateAttendeeIdentity(req.FirstName, req.LastName, req.Email)
}

// Validate validates transfer data
func (req *TransferRequest) Validate() error {
	return validateAttendeeIdentity(req.FirstName, req.LastName, req.Email)
}

func validateAttendeeIdentity(firstName, lastName, email string) error {
	if strings.TrimSpace(firstName) == "" {
		return errors.New("first name is required")
	}

	if strings.TrimSpace(lastName) == "" {
		return errors.New("last name is required")
	}

	if email == "" {
		return errors.New("email is required")
	}

	if len(email) > 255 {
		return errors.New("email must be less than 255 characters")
	}

	if !attendeeEmailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}

	return nil
}

// FullName returns the attendee's display name
func (a *Attendee) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// IsAssigned returns true once the attendee is bound to a ticket
func (a *Attendee) IsAssigned() bool {
	return a.TicketID != nil
}
