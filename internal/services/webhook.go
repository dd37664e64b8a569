package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"tixwell/internal/models"
	"tixwell/internal/monitoring"
)

// Recognized payment provider event types (exact, case-sensitive)
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// SignatureVerifier authenticates raw webhook deliveries
type SignatureVerifier interface {
	VerifyWebhookSignature(payload []byte, header string) error
}

// OrderStateMachine is the slice of the order service the reconciler drives
type OrderStateMachine interface {
	Finalize(orderID int, confirmation PaymentConfirmation) (*models.Order, error)
	Expire(orderID int) TransitionOutcome
	Abort(orderID int) TransitionOutcome
}

// WebhookService translates external payment-provider notifications into
// order state transitions. Deliveries may arrive duplicated and out of order;
// the state machine's own idempotency makes every branch safe to replay.
type WebhookService struct {
	verifier SignatureVerifier
	orders   OrderStateMachine
}

// NewWebhookService creates a new webhook service
func NewWebhookService(verifier SignatureVerifier, orders OrderStateMachine) *WebhookService {
	return &WebhookService{
		verifier: verifier,
		orders:   orders,
	}
}

// webhookEvent is the provider's event envelope
type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// sessionObject covers checkout sessions and payment intents alike: both
// carry the order mapping in their metadata.
type sessionObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// HandleNotification verifies and processes one webhook delivery.
//
// Only two failure classes surface as errors: an invalid signature and a
// failed completed-checkout reconciliation, because the provider must retry
// those. Expiry and payment-failure events are best-effort negative
// transitions; a miss is self-healing, so those paths log and swallow.
func (s *WebhookService) HandleNotification(payload []byte, signatureHeader string) error {
	if err := s.verifier.VerifyWebhookSignature(payload, signatureHeader); err != nil {
		monitoring.RecordWebhookEvent("unverified", "signature_invalid")
		return err
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		monitoring.RecordWebhookEvent("unparseable", "failed")
		return fmt.Errorf("failed to decode webhook event: %w", models.ErrReconciliationFailed)
	}

	switch event.Type {
	case EventCheckoutCompleted:
		if err := s.handleCheckoutCompleted(&event); err != nil {
			monitoring.RecordWebhookEvent(event.Type, "failed")
			return err
		}
		monitoring.RecordWebhookEvent(event.Type, "ok")
		return nil

	case EventCheckoutExpired:
		s.handleNegativeOutcome(&event, s.orders.Expire)
		monitoring.RecordWebhookEvent(event.Type, "ok")
		return nil

	case EventPaymentFailed:
		s.handleNegativeOutcome(&event, s.orders.Abort)
		monitoring.RecordWebhookEvent(event.Type, "ok")
		return nil

	default:
		monitoring.RecordWebhookEvent(event.Type, "ignored")
		return nil
	}
}

// handleCheckoutCompleted drives the only transition with an expensive side
// effect. Every failure is surfaced so the provider redelivers.
func (s *WebhookService) handleCheckoutCompleted(event *webhookEvent) error {
	orderID, sessionID, err := extractOrderRef(event)
	if err != nil {
		return fmt.Errorf("%s event %s: %v: %w", event.Type, event.ID, err, models.ErrReconciliationFailed)
	}

	if _, err := s.orders.Finalize(orderID, PaymentConfirmation{Reference: sessionID}); err != nil {
		return fmt.Errorf("finalize of order %d failed: %v: %w", orderID, err, models.ErrReconciliationFailed)
	}

	return nil
}

// handleNegativeOutcome applies an expire/abort transition on a best-effort
// basis. Missing metadata and downstream rejections are logged, never raised:
// a missed negative transition is recoverable by the deadline sweep, and the
// delivery must be acknowledged either way.
func (s *WebhookService) handleNegativeOutcome(event *webhookEvent, transition func(int) TransitionOutcome) {
	orderID, _, err := extractOrderRef(event)
	if err != nil {
		log.Printf("Ignoring %s event %s: %v", event.Type, event.ID, err)
		return
	}

	transition(orderID)
}

// extractOrderRef pulls the order ID out of the event object's metadata
func extractOrderRef(event *webhookEvent) (int, string, error) {
	if len(event.Data.Object) == 0 {
		return 0, "", fmt.Errorf("event carries no object")
	}

	var object sessionObject
	if err := json.Unmarshal(event.Data.Object, &object); err != nil {
		return 0, "", fmt.Errorf("malformed event object: %v", err)
	}

	raw, ok := object.Metadata["order_id"]
	if !ok {
		return 0, "", fmt.Errorf("metadata has no order_id")
	}

	orderID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "", fmt.Errorf("unparseable order_id %q", raw)
	}

	return orderID, object.ID, nil
}
