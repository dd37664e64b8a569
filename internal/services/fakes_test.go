package services

import (
	"errors"
	"sort"
	"time"

	"tixwell/internal/models"
)

// In-memory repository fakes shared by the service tests.

type fakeOrderRepo struct {
	orders map[int]*models.Order
	items  map[int][]*models.OrderItem

	issuedBatches [][]models.TicketIssue
	finalizeErrs  []error // queued errors popped on each Finalize call
	nextTicketID  int

	boundAttendees map[int]int // attendee ID -> ticket ID
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:         make(map[int]*models.Order),
		items:          make(map[int][]*models.OrderItem),
		boundAttendees: make(map[int]int),
		nextTicketID:   1,
	}
}

func (f *fakeOrderRepo) Create(order *models.Order, items []*models.OrderItem) (*models.Order, error) {
	order.ID = len(f.orders) + 1
	order.Status = models.OrderPending
	order.CreatedAt = time.Now()
	f.orders[order.ID] = order
	for _, item := range items {
		item.OrderID = order.ID
	}
	f.items[order.ID] = items
	return order, nil
}

func (f *fakeOrderRepo) GetByID(id int) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) GetItems(orderID int) ([]*models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) SetPaymentSession(orderID int, sessionID string) error {
	order, ok := f.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	order.PaymentSessionID = sessionID
	return nil
}

func (f *fakeOrderRepo) Finalize(orderID int, paymentRef string, issues []models.TicketIssue) error {
	if len(f.finalizeErrs) > 0 {
		err := f.finalizeErrs[0]
		f.finalizeErrs = f.finalizeErrs[1:]
		if err != nil {
			return err
		}
	}

	order, ok := f.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}

	switch order.Status {
	case models.OrderPaid:
		return models.ErrOrderAlreadyPaid
	case models.OrderExpired, models.OrderAborted:
		return models.ErrOrderNotPending
	}

	order.Status = models.OrderPaid
	if paymentRef != "" {
		order.PaymentSessionID = paymentRef
	}

	for _, issue := range issues {
		issue.Ticket.ID = f.nextTicketID
		f.nextTicketID++
		if issue.AttendeeID > 0 {
			f.boundAttendees[issue.AttendeeID] = issue.Ticket.ID
		}
	}
	f.issuedBatches = append(f.issuedBatches, issues)

	return nil
}

func (f *fakeOrderRepo) SettleIfPending(orderID int, status models.OrderStatus) (bool, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return false, models.ErrOrderNotFound
	}
	if order.Status != models.OrderPending {
		return false, nil
	}
	order.Status = status
	return true, nil
}

func (f *fakeOrderRepo) GetOverdue(now time.Time) ([]*models.Order, error) {
	var overdue []*models.Order
	for _, order := range f.orders {
		if order.Status == models.OrderPending && order.PaymentDeadline.Before(now) {
			overdue = append(overdue, order)
		}
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i].ID < overdue[j].ID })
	return overdue, nil
}

type fakeTicketRepo struct {
	tickets map[string]*models.Ticket // keyed by code
	types   map[int]*models.TicketType
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[string]*models.Ticket),
		types:   make(map[int]*models.TicketType),
	}
}

func (f *fakeTicketRepo) add(ticket *models.Ticket) {
	f.tickets[ticket.Code] = ticket
}

func (f *fakeTicketRepo) GetByCode(code string) (*models.Ticket, error) {
	ticket, ok := f.tickets[code]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	return ticket, nil
}

func (f *fakeTicketRepo) GetByID(id int) (*models.Ticket, error) {
	for _, ticket := range f.tickets {
		if ticket.ID == id {
			return ticket, nil
		}
	}
	return nil, models.ErrTicketNotFound
}

func (f *fakeTicketRepo) GetByOrder(orderID int) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	for _, ticket := range f.tickets {
		if ticket.OrderID == orderID {
			tickets = append(tickets, ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

func (f *fakeTicketRepo) MarkCheckedIn(id int, at time.Time) (bool, error) {
	ticket, err := f.GetByID(id)
	if err != nil {
		return false, err
	}
	if ticket.Status != models.TicketValid || ticket.CheckedIn {
		return false, nil
	}
	ticket.CheckedIn = true
	ticket.CheckedInAt = &at
	return true, nil
}

func (f *fakeTicketRepo) GetTicketTypeByID(id int) (*models.TicketType, error) {
	tt, ok := f.types[id]
	if !ok {
		return nil, errors.New("ticket type not found")
	}
	return tt, nil
}

type fakeAttendeeRepo struct {
	attendees   map[int]*models.Attendee
	eventStarts map[int]time.Time // keyed by event ID
	defs        []*models.EventCustomFieldDefinition
	nextID      int
}

func newFakeAttendeeRepo() *fakeAttendeeRepo {
	return &fakeAttendeeRepo{
		attendees:   make(map[int]*models.Attendee),
		eventStarts: make(map[int]time.Time),
		nextID:      1,
	}
}

func (f *fakeAttendeeRepo) Create(attendee *models.Attendee) (*models.Attendee, error) {
	attendee.ID = f.nextID
	f.nextID++
	attendee.Status = models.AttendeeNotCheckedIn
	attendee.CreatedAt = time.Now()
	f.attendees[attendee.ID] = attendee
	return attendee, nil
}

func (f *fakeAttendeeRepo) GetByID(id int) (*models.Attendee, error) {
	attendee, ok := f.attendees[id]
	if !ok {
		return nil, models.ErrAttendeeNotFound
	}
	return attendee, nil
}

func (f *fakeAttendeeRepo) GetUnassignedByOrder(orderID int) ([]*models.Attendee, error) {
	var unassigned []*models.Attendee
	for _, attendee := range f.attendees {
		if attendee.OrderID == orderID && attendee.TicketID == nil {
			unassigned = append(unassigned, attendee)
		}
	}
	sort.Slice(unassigned, func(i, j int) bool { return unassigned[i].ID < unassigned[j].ID })
	return unassigned, nil
}

func (f *fakeAttendeeRepo) GetEventStart(attendeeID int) (time.Time, error) {
	attendee, ok := f.attendees[attendeeID]
	if !ok {
		return time.Time{}, models.ErrAttendeeNotFound
	}
	return f.eventStarts[attendee.EventID], nil
}

func (f *fakeAttendeeRepo) Replace(oldID int, replacement *models.Attendee) (*models.Attendee, error) {
	old, ok := f.attendees[oldID]
	if !ok {
		return nil, models.ErrAttendeeNotFound
	}
	delete(f.attendees, oldID)

	replacement.OrderID = old.OrderID
	replacement.EventID = old.EventID
	replacement.TicketID = old.TicketID
	replacement.Fields = nil
	return f.Create(replacement)
}

func (f *fakeAttendeeRepo) GetFieldDefinitions(eventID int, ticketTypeID *int) ([]*models.EventCustomFieldDefinition, error) {
	var defs []*models.EventCustomFieldDefinition
	for _, def := range f.defs {
		if def.EventID != eventID {
			continue
		}
		if def.TicketTypeID != nil && (ticketTypeID == nil || *def.TicketTypeID != *ticketTypeID) {
			continue
		}
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Position < defs[j].Position })
	return defs, nil
}

type fakeCheckoutProvider struct {
	sessionID string
	err       error
	calls     int
}

func (f *fakeCheckoutProvider) CreateCheckoutSession(order *models.Order, items []*models.OrderItem, billing BillingDetails) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.sessionID == "" {
		return "cs_test_session", nil
	}
	return f.sessionID, nil
}
