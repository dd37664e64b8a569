package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendeeCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     AttendeeCreateRequest
		wantErr bool
	}{
		{"valid", AttendeeCreateRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, false},
		{"missing first name", AttendeeCreateRequest{LastName: "Lovelace", Email: "ada@example.com"}, true},
		{"blank first name", AttendeeCreateRequest{FirstName: "   ", LastName: "Lovelace", Email: "ada@example.com"}, true},
		{"missing last name", AttendeeCreateRequest{FirstName: "Ada", Email: "ada@example.com"}, true},
		{"missing email", AttendeeCreateRequest{FirstName: "Ada", LastName: "Lovelace"}, true},
		{"bad email", AttendeeCreateRequest{FirstName: "Ada", LastName: "Lovelace", Email: "nope"}, true},
		{"overlong email", AttendeeCreateRequest{FirstName: "Ada", LastName: "Lovelace", Email: strings.Repeat("a", 250) + "@example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := &ValidationError{Label: "T-Shirt Size"}

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Contains(t, err.Error(), `"T-Shirt Size"`)
}

func TestAttendeeHelpers(t *testing.T) {
	a := Attendee{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", a.FullName())
	assert.False(t, a.IsAssigned())

	ticketID := 5
	a.TicketID = &ticketID
	assert.True(t, a.IsAssigned())
}
