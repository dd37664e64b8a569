package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"tixwell/internal/models"
)

// WebhookReconciler processes raw payment-provider deliveries
type WebhookReconciler interface {
	HandleNotification(payload []byte, signatureHeader string) error
}

// WebhookHandler terminates the payment provider's webhook endpoint
type WebhookHandler struct {
	reconciler WebhookReconciler
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconciler WebhookReconciler) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// maxWebhookBody bounds the accepted payload size
const maxWebhookBody = 1 << 20

// HandleNotification receives one webhook delivery. A 2xx acknowledges the
// delivery; 400 rejects a bad signature; 500 asks the provider to retry a
// failed completed-checkout reconciliation.
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("Webhook: failed to read payload: %v", err)
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	if err := h.reconciler.HandleNotification(payload, signature); err != nil {
		if errors.Is(err, models.ErrSignatureInvalid) {
			log.Printf("Webhook: rejected delivery with invalid signature")
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}

		// Reconciliation failures must be redelivered by the provider.
		log.Printf("Webhook: %v", err)
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
