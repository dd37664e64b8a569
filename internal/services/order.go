package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tixwell/internal/clock"
	"tixwell/internal/models"
	"tixwell/internal/monitoring"
)

// OrderRepository interface for order data operations
type OrderRepository interface {
	Create(order *models.Order, items []*models.OrderItem) (*models.Order, error)
	GetByID(id int) (*models.Order, error)
	GetItems(orderID int) ([]*models.OrderItem, error)
	SetPaymentSession(orderID int, sessionID string) error
	Finalize(orderID int, paymentRef string, issues []models.TicketIssue) error
	SettleIfPending(orderID int, status models.OrderStatus) (bool, error)
	GetOverdue(now time.Time) ([]*models.Order, error)
}

// AttendeeReader is the slice of attendee storage the order flow needs
type AttendeeReader interface {
	GetUnassignedByOrder(orderID int) ([]*models.Attendee, error)
}

// TicketTypeReader resolves ticket types while pricing an order
type TicketTypeReader interface {
	GetTicketTypeByID(id int) (*models.TicketType, error)
}

// CheckoutProvider is the payment collaborator boundary consumed at checkout
// start. The session ID it returns is stored on the order before any webhook
// can reference it.
type CheckoutProvider interface {
	CreateCheckoutSession(order *models.Order, items []*models.OrderItem, billing BillingDetails) (string, error)
}

// BillingDetails carries the buyer's billing identity to the payment provider
type BillingDetails struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PaymentConfirmation carries the provider-side proof attached to a finalize
type PaymentConfirmation struct {
	Reference string
}

// TransitionOutcome is the best-effort result of an expire/abort attempt.
// These paths never fail with an error for already-settled orders; callers
// that care can inspect the outcome.
type TransitionOutcome int

const (
	TransitionApplied TransitionOutcome = iota
	TransitionAlreadySettled
	TransitionOrderNotFound
	TransitionFailed
)

// finalizeAttempts bounds regeneration when a generated code collides with an
// existing ticket. Collisions are statistically negligible, the storage-level
// unique constraint is the backstop.
const finalizeAttempts = 3

// OrderService owns the order lifecycle: PENDING -> {PAID, EXPIRED, ABORTED},
// terminal states are final. Finalize is the only transition with an expensive
// side effect (ticket issuance) and therefore the only one with strict
// idempotency guarantees.
type OrderService struct {
	orderRepo    OrderRepository
	attendeeRepo AttendeeReader
	ticketTypes  TicketTypeReader
	issuer       *TicketIssuer
	provider     CheckoutProvider
	clock        clock.Clock
	deadline     time.Duration
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo OrderRepository,
	attendeeRepo AttendeeReader,
	ticketTypes TicketTypeReader,
	issuer *TicketIssuer,
	provider CheckoutProvider,
	clk clock.Clock,
	paymentDeadline time.Duration,
) *OrderService {
	if paymentDeadline <= 0 {
		paymentDeadline = 30 * time.Minute
	}

	return &OrderService{
		orderRepo:    orderRepo,
		attendeeRepo: attendeeRepo,
		ticketTypes:  ticketTypes,
		issuer:       issuer,
		provider:     provider,
		clock:        clk,
		deadline:     paymentDeadline,
	}
}

// StartCheckout creates a pending order with its line items, opens a checkout
// session with the payment provider and stores the session reference on the
// order.
func (s *OrderService) StartCheckout(req *models.OrderCreateRequest, billing BillingDetails) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var items []*models.OrderItem
	total := 0
	for _, line := range req.Items {
		ticketType, err := s.ticketTypes.GetTicketTypeByID(line.TicketTypeID)
		if err != nil {
			return nil, fmt.Errorf("invalid ticket selection: %w", err)
		}

		items = append(items, &models.OrderItem{
			TicketTypeID: ticketType.ID,
			Quantity:     line.Quantity,
			UnitPrice:    ticketType.Price,
		})
		total += ticketType.Price * line.Quantity
	}

	total -= req.Discount
	if total < 0 {
		total = 0
	}

	order := &models.Order{
		UserID:          req.UserID,
		EventID:         req.EventID,
		TotalAmount:     total,
		DiscountAmount:  req.Discount,
		PaymentDeadline: s.clock.Now().Add(s.deadline),
	}

	created, err := s.orderRepo.Create(order, items)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	sessionID, err := s.provider.CreateCheckoutSession(created, items, billing)
	if err != nil {
		// The order stays pending; the deadline sweep will expire it.
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.orderRepo.SetPaymentSession(created.ID, sessionID); err != nil {
		return nil, fmt.Errorf("failed to store checkout session: %w", err)
	}
	created.PaymentSessionID = sessionID

	return created, nil
}

// Finalize marks a pending order paid and issues its tickets as one atomic
// unit. Calling it again for an already-paid order returns the existing order
// unchanged; a different terminal state is a conflict.
func (s *OrderService) Finalize(orderID int, confirmation PaymentConfirmation) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid() {
		return order, nil
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("cannot finalize order %d in status %s: %w", orderID, order.Status, models.ErrStateConflict)
	}

	items, err := s.orderRepo.GetItems(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	unassigned, err := s.attendeeRepo.GetUnassignedByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unassigned attendees: %w", err)
	}

	var issued int
	for attempt := 0; ; attempt++ {
		issues, err := s.issuer.BuildBatch(order, items, unassigned)
		if err != nil {
			return nil, fmt.Errorf("failed to build ticket batch: %w", err)
		}

		err = s.orderRepo.Finalize(orderID, confirmation.Reference, issues)
		if err == nil {
			issued = len(issues)
			break
		}

		if errors.Is(err, models.ErrOrderAlreadyPaid) {
			// A concurrent finalize won the race; its ticket set stands.
			return s.orderRepo.GetByID(orderID)
		}
		if errors.Is(err, models.ErrOrderNotPending) {
			return nil, fmt.Errorf("cannot finalize order %d: %w", orderID, models.ErrStateConflict)
		}
		if errors.Is(err, models.ErrDuplicateTicketCode) && attempt < finalizeAttempts-1 {
			log.Printf("Ticket code collision on order %d, regenerating batch (attempt %d)", orderID, attempt+1)
			continue
		}
		return nil, fmt.Errorf("failed to finalize order %d: %w", orderID, err)
	}

	monitoring.RecordTicketsIssued(issued)

	return s.orderRepo.GetByID(orderID)
}

// Expire moves a pending order to EXPIRED. Best-effort cleanup: an order that
// already settled is left untouched and only logged.
func (s *OrderService) Expire(orderID int) TransitionOutcome {
	return s.settle(orderID, models.OrderExpired)
}

// Abort moves a pending order to ABORTED after a failed payment. Same
// best-effort semantics as Expire.
func (s *OrderService) Abort(orderID int) TransitionOutcome {
	return s.settle(orderID, models.OrderAborted)
}

func (s *OrderService) settle(orderID int, status models.OrderStatus) TransitionOutcome {
	applied, err := s.orderRepo.SettleIfPending(orderID, status)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			log.Printf("Cannot %s order %d: order does not exist", status, orderID)
			return TransitionOrderNotFound
		}
		log.Printf("Failed to %s order %d: %v", status, orderID, err)
		return TransitionFailed
	}

	if !applied {
		log.Printf("Order %d already settled, %s not applied", orderID, status)
		return TransitionAlreadySettled
	}

	return TransitionApplied
}

// ExpireOverdue expires every pending order whose payment deadline has passed.
// Meant to be driven by an external scheduler; the webhook path stays the
// primary expiry signal.
func (s *OrderService) ExpireOverdue() (int, error) {
	overdue, err := s.orderRepo.GetOverdue(s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to load overdue orders: %w", err)
	}

	expired := 0
	for _, order := range overdue {
		if s.Expire(order.ID) == TransitionApplied {
			expired++
		}
	}

	return expired, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(orderID int) (*models.Order, error) {
	return s.orderRepo.GetByID(orderID)
}
