package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrEventNotFound    = errors.New("event not found")

	// ErrStateConflict is returned when a finalize is requested on an order
	// that already reached a different terminal state.
	ErrStateConflict = errors.New("order is already settled in a conflicting state")

	// ErrSignatureInvalid is returned when a webhook payload fails the
	// authenticity check. No state is mutated when this is returned.
	ErrSignatureInvalid = errors.New("webhook signature verification failed")

	// ErrReconciliationFailed wraps failures while processing a completed
	// checkout notification so the provider retries delivery.
	ErrReconciliationFailed = errors.New("payment reconciliation failed")

	ErrTicketNotValid       = errors.New("ticket is not valid for check-in")
	ErrTicketAlreadyScanned = errors.New("ticket has already been scanned")
	ErrTransferNotAllowed   = errors.New("ticket transfer window has closed")

	// Repository-level sentinels used by the order state machine to decide
	// between the idempotent short-circuit and a hard conflict.
	ErrOrderAlreadyPaid    = errors.New("order is already paid")
	ErrOrderNotPending     = errors.New("order is not pending")
	ErrDuplicateTicketCode = errors.New("generated ticket code or qr token already exists")
)

// ValidationError reports a missing required custom field. The message carries
// the field's display label, not its internal name.
type ValidationError struct {
	Label string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q must not be empty", e.Label)
}

// ErrValidationFailed lets callers match any ValidationError with errors.Is.
var ErrValidationFailed = errors.New("attendee validation failed")

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
