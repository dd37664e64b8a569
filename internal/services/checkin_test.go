package services

import (
	"testing"
	"time"

	"tixwell/internal/clock"
	"tixwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIn_MarksTicketScanned(t *testing.T) {
	now := time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)
	ticketRepo := newFakeTicketRepo()
	ticketRepo.add(&models.Ticket{ID: 1, Code: "TIX-AAAABBBBCCCC", Status: models.TicketValid})

	svc := NewCheckInService(ticketRepo, newFakeAttendeeRepo(), clock.NewFixed(now))

	ticket, err := svc.CheckIn("TIX-AAAABBBBCCCC")
	require.NoError(t, err)

	assert.True(t, ticket.CheckedIn)
	require.NotNil(t, ticket.CheckedInAt)
	assert.Equal(t, now, *ticket.CheckedInAt)
}

func TestCheckIn_SecondScanRejected(t *testing.T) {
	ticketRepo := newFakeTicketRepo()
	ticketRepo.add(&models.Ticket{ID: 1, Code: "TIX-AAAABBBBCCCC", Status: models.TicketValid})

	svc := NewCheckInService(ticketRepo, newFakeAttendeeRepo(), clock.NewSystem())

	_, err := svc.CheckIn("TIX-AAAABBBBCCCC")
	require.NoError(t, err)

	_, err = svc.CheckIn("TIX-AAAABBBBCCCC")
	assert.ErrorIs(t, err, models.ErrTicketAlreadyScanned)
}

func TestCheckIn_UnknownCode(t *testing.T) {
	svc := NewCheckInService(newFakeTicketRepo(), newFakeAttendeeRepo(), clock.NewSystem())

	_, err := svc.CheckIn("TIX-DOESNOTEXIST")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestCheckIn_NonValidStatuses(t *testing.T) {
	statuses := []models.TicketStatus{models.TicketCancelled, models.TicketRefunded, models.TicketTransferred}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			ticketRepo := newFakeTicketRepo()
			ticketRepo.add(&models.Ticket{ID: 1, Code: "TIX-AAAABBBBCCCC", Status: status})

			svc := NewCheckInService(ticketRepo, newFakeAttendeeRepo(), clock.NewSystem())

			_, err := svc.CheckIn("TIX-AAAABBBBCCCC")
			assert.ErrorIs(t, err, models.ErrTicketNotValid)
		})
	}
}

func seedAttendeeWithEvent(t *testing.T, repo *fakeAttendeeRepo, eventStart time.Time) *models.Attendee {
	t.Helper()
	ticketID := 5
	attendee, err := repo.Create(&models.Attendee{
		OrderID:   1,
		EventID:   3,
		TicketID:  &ticketID,
		FirstName: "Original",
		LastName:  "Holder",
		Email:     "original@example.com",
		Fields:    []models.CustomFieldValue{{Name: "shirt_size", Value: strPtr("M")}},
	})
	require.NoError(t, err)
	repo.eventStarts[3] = eventStart
	return attendee
}

func strPtr(s string) *string { return &s }

func TestTransfer_ReplacesAttendee(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	attendeeRepo := newFakeAttendeeRepo()
	old := seedAttendeeWithEvent(t, attendeeRepo, now.Add(48*time.Hour))

	svc := NewCheckInService(newFakeTicketRepo(), attendeeRepo, clock.NewFixed(now))

	req := &models.TransferRequest{FirstName: "New", LastName: "Holder", Email: "new@example.com"}
	created, err := svc.Transfer(old.ID, req)
	require.NoError(t, err)

	// Old record is gone, the replacement keeps the ticket but not the answers.
	_, err = attendeeRepo.GetByID(old.ID)
	assert.ErrorIs(t, err, models.ErrAttendeeNotFound)

	assert.Equal(t, "New", created.FirstName)
	assert.Equal(t, "new@example.com", created.Email)
	require.NotNil(t, created.TicketID)
	assert.Equal(t, 5, *created.TicketID)
	assert.Empty(t, created.Fields, "custom-field answers do not carry over")
}

func TestTransfer_WindowBoundary(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		eventStart time.Time
		wantErr    bool
	}{
		{"well before cutoff", now.Add(25 * time.Hour), false},
		{"just outside cutoff", now.Add(24*time.Hour + time.Second), false},
		{"exactly at cutoff", now.Add(24 * time.Hour), true},
		{"inside cutoff", now.Add(2 * time.Hour), true},
		{"event already started", now.Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attendeeRepo := newFakeAttendeeRepo()
			attendee := seedAttendeeWithEvent(t, attendeeRepo, tt.eventStart)

			svc := NewCheckInService(newFakeTicketRepo(), attendeeRepo, clock.NewFixed(now))

			req := &models.TransferRequest{FirstName: "New", LastName: "Holder", Email: "new@example.com"}
			_, err := svc.Transfer(attendee.ID, req)

			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrTransferNotAllowed)
				_, getErr := attendeeRepo.GetByID(attendee.ID)
				assert.NoError(t, getErr, "attendee untouched when transfer rejected")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransfer_UnknownAttendee(t *testing.T) {
	svc := NewCheckInService(newFakeTicketRepo(), newFakeAttendeeRepo(), clock.NewSystem())

	req := &models.TransferRequest{FirstName: "New", LastName: "Holder", Email: "new@example.com"}
	_, err := svc.Transfer(404, req)

	assert.ErrorIs(t, err, models.ErrAttendeeNotFound)
}

func TestTransfer_RejectsInvalidHolder(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	attendeeRepo := newFakeAttendeeRepo()
	attendee := seedAttendeeWithEvent(t, attendeeRepo, now.Add(48*time.Hour))

	svc := NewCheckInService(newFakeTicketRepo(), attendeeRepo, clock.NewFixed(now))

	tests := []struct {
		name string
		req  *models.TransferRequest
	}{
		{"missing first name", &models.TransferRequest{LastName: "Holder", Email: "new@example.com"}},
		{"missing last name", &models.TransferRequest{FirstName: "New", Email: "new@example.com"}},
		{"bad email", &models.TransferRequest{FirstName: "New", LastName: "Holder", Email: "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transfer(attendee.ID, tt.req)
			assert.Error(t, err)
		})
	}
}

func TestGetTicketsByOrder(t *testing.T) {
	ticketRepo := newFakeTicketRepo()
	ticketRepo.add(&models.Ticket{ID: 2, OrderID: 1, Code: "TIX-BBBBBBBBBBBB", Status: models.TicketValid})
	ticketRepo.add(&models.Ticket{ID: 1, OrderID: 1, Code: "TIX-AAAAAAAAAAAA", Status: models.TicketValid})
	ticketRepo.add(&models.Ticket{ID: 3, OrderID: 2, Code: "TIX-CCCCCCCCCCCC", Status: models.TicketValid})

	svc := NewCheckInService(ticketRepo, newFakeAttendeeRepo(), clock.NewSystem())

	tickets, err := svc.GetTicketsByOrder(1)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, 1, tickets[0].ID)
	assert.Equal(t, 2, tickets[1].ID)
}
