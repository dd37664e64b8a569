package services

import (
	"fmt"
	"strings"
	"time"

	"tixwell/internal/models"
)

// AttendeeRepository interface for attendee data operations
type AttendeeRepository interface {
	Create(attendee *models.Attendee) (*models.Attendee, error)
	GetByID(id int) (*models.Attendee, error)
	GetUnassignedByOrder(orderID int) ([]*models.Attendee, error)
	GetEventStart(attendeeID int) (time.Time, error)
	Replace(oldID int, replacement *models.Attendee) (*models.Attendee, error)
	GetFieldDefinitions(eventID int, ticketTypeID *int) ([]*models.EventCustomFieldDefinition, error)
}

// AttendeeService creates attendee records and validates their submitted
// custom-field answers against the event's field schema.
type AttendeeService struct {
	attendeeRepo AttendeeRepository
}

// NewAttendeeService creates a new attendee service
func NewAttendeeService(attendeeRepo AttendeeRepository) *AttendeeService {
	return &AttendeeService{attendeeRepo: attendeeRepo}
}

// ValidateCustomFields rejects the submission if any required field is absent
// or blank. Definitions are walked in stored display order and the first
// violation wins; the error names the field's display label, not its internal
// name. Optional fields pass through unchecked.
func ValidateCustomFields(defs []*models.EventCustomFieldDefinition, values []models.CustomFieldValue) error {
	byName := make(map[string]*string, len(values))
	for _, v := range values {
		byName[v.Name] = v.Value
	}

	for _, def := range defs {
		if !def.Required {
			continue
		}

		value, ok := byName[def.Name]
		if !ok || value == nil || strings.TrimSpace(*value) == "" {
			return &models.ValidationError{Label: def.Label}
		}
	}

	return nil
}

// CreateAttendee creates an unassigned attendee for an order after validating
// the submitted custom fields against the event's definitions. When the order
// has a single ticket type the type-scoped definitions apply as well.
func (s *AttendeeService) CreateAttendee(req *models.AttendeeCreateRequest, order *models.Order, ticketTypeID *int) (*models.Attendee, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	defs, err := s.attendeeRepo.GetFieldDefinitions(order.EventID, ticketTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom field definitions: %w", err)
	}

	if err := ValidateCustomFields(defs, req.Fields); err != nil {
		return nil, err
	}

	attendee := &models.Attendee{
		OrderID:   order.ID,
		EventID:   order.EventID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Fields:    req.Fields,
	}

	created, err := s.attendeeRepo.Create(attendee)
	if err != nil {
		return nil, fmt.Errorf("failed to create attendee: %w", err)
	}

	return created, nil
}
