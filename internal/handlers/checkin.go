package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tixwell/internal/models"

	"github.com/go-chi/chi/v5"
)

// CheckInService is the ticket-level state machine the handler exposes
type CheckInService interface {
	CheckIn(ticketCode string) (*models.Ticket, error)
	Transfer(attendeeID int, req *models.TransferRequest) (*models.Attendee, error)
	GetTicketsByOrder(orderID int) ([]*models.Ticket, error)
}

// TicketHandler handles check-in and transfer operations
type TicketHandler struct {
	checkInService CheckInService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(checkInService CheckInService) *TicketHandler {
	return &TicketHandler{checkInService: checkInService}
}

// CheckIn scans a ticket by its code
func (h *TicketHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ticket code is required"})
		return
	}

	ticket, err := h.checkInService.CheckIn(code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Transfer hands a ticket over to a new holder via its attendee
func (h *TicketHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	attendeeID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid attendee id"})
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	attendee, err := h.checkInService.Transfer(attendeeID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, attendee)
}

// ListByOrder retrieves the tickets issued for an order
func (h *TicketHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	tickets, err := h.checkInService.GetTicketsByOrder(orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tickets)
}
