package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tixwell/internal/models"
	"tixwell/internal/services"

	"github.com/go-chi/chi/v5"
)

// OrderService is the order lifecycle surface the handler exposes
type OrderService interface {
	StartCheckout(req *models.OrderCreateRequest, billing services.BillingDetails) (*models.Order, error)
	GetOrder(orderID int) (*models.Order, error)
}

// AttendeeService creates attendees for an order
type AttendeeService interface {
	CreateAttendee(req *models.AttendeeCreateRequest, order *models.Order, ticketTypeID *int) (*models.Attendee, error)
}

// OrderHandler handles checkout and attendee registration
type OrderHandler struct {
	orderService    OrderService
	attendeeService AttendeeService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderService, attendeeService AttendeeService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		attendeeService: attendeeService,
	}
}

// checkoutRequest is the wire shape of a checkout start
type checkoutRequest struct {
	models.OrderCreateRequest
	Billing services.BillingDetails `json:"billing"`
}

// StartCheckout creates a pending order and opens a payment session
func (h *OrderHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orderService.StartCheckout(&req.OrderCreateRequest, req.Billing)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetOrder retrieves an order by ID
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.orderService.GetOrder(orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// attendeeRequest optionally scopes the attendee to a ticket type for
// type-specific custom fields
type attendeeRequest struct {
	models.AttendeeCreateRequest
	TicketTypeID *int `json:"ticket_type_id"`
}

// CreateAttendee registers an unassigned attendee on an order
func (h *OrderHandler) CreateAttendee(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.orderService.GetOrder(orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req attendeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	attendee, err := h.attendeeService.CreateAttendee(&req.AttendeeCreateRequest, order, req.TicketTypeID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, attendee)
}
