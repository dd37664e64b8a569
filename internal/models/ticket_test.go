package models

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketCode(t *testing.T) {
	pattern := regexp.MustCompile(`^TIX-[0-9A-Z]{12}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateTicketCode()
		require.NoError(t, err)

		assert.Regexp(t, pattern, code)
		assert.False(t, seen[code], "codes should not repeat")
		seen[code] = true
	}
}

func TestTicketCanBeScanned(t *testing.T) {
	tests := []struct {
		name      string
		ticket    Ticket
		scannable bool
	}{
		{"valid fresh", Ticket{Status: TicketValid}, true},
		{"valid already scanned", Ticket{Status: TicketValid, CheckedIn: true}, false},
		{"cancelled", Ticket{Status: TicketCancelled}, false},
		{"refunded", Ticket{Status: TicketRefunded}, false},
		{"transferred", Ticket{Status: TicketTransferred}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.scannable, tt.ticket.CanBeScanned())
		})
	}
}

func TestTicketValidate(t *testing.T) {
	valid := Ticket{Code: "TIX-AAAABBBBCCCC", QRToken: "token", Status: TicketValid}
	assert.NoError(t, valid.Validate())

	noCode := valid
	noCode.Code = ""
	assert.Error(t, noCode.Validate())

	noToken := valid
	noToken.QRToken = ""
	assert.Error(t, noToken.Validate())

	badStatus := valid
	badStatus.Status = "lost"
	assert.Error(t, badStatus.Validate())
}

func TestTicketTypeAvailability(t *testing.T) {
	tt := TicketType{Quantity: 10, Sold: 3}
	assert.Equal(t, 7, tt.Available())
	assert.False(t, tt.IsSoldOut())

	tt.Sold = 10
	assert.Zero(t, tt.Available())
	assert.True(t, tt.IsSoldOut())

	tt.Sold = 12 // oversold guard
	assert.Zero(t, tt.Available())
}
