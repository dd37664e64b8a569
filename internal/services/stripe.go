package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tixwell/internal/models"
)

// StripeConfig represents Stripe payment service configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// StripeService talks to the Stripe API for checkout-session creation and
// terminates the webhook trust boundary via signature verification.
type StripeService struct {
	config  StripeConfig
	client  *http.Client
	baseURL string
}

// NewStripeService creates a new Stripe payment service
func NewStripeService(config StripeConfig) *StripeService {
	if config.Currency == "" {
		config.Currency = "eur"
	}

	return &StripeService{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.stripe.com",
	}
}

// checkoutSessionResponse is the subset of the session object we consume
type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// stripeError represents an error response from the Stripe API
type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a hosted checkout session for the order. The
// order ID travels in the session metadata so the webhook reconciler can map
// notifications back to the order.
func (s *StripeService) CreateCheckoutSession(order *models.Order, items []*models.OrderItem, billing BillingDetails) (string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", billing.Email)
	form.Set("success_url", s.config.SuccessURL)
	form.Set("cancel_url", s.config.CancelURL)
	form.Set("metadata[order_id]", strconv.Itoa(order.ID))
	form.Set("payment_intent_data[metadata][order_id]", strconv.Itoa(order.ID))
	form.Set("expires_at", strconv.FormatInt(order.PaymentDeadline.Unix(), 10))

	for i, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", s.config.Currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.Itoa(item.UnitPrice))
		form.Set(prefix+"[price_data][product_data][name]", fmt.Sprintf("Ticket type %d", item.TicketTypeID))
	}

	req, err := http.NewRequest("POST", s.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create session request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send session request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read session response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("stripe rejected session (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("stripe rejected session (status %d)", resp.StatusCode)
	}

	var session checkoutSessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}

	return session.ID, nil
}

// signatureTolerance bounds how stale a signed webhook timestamp may be
const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks a `t=<unix>,v1=<hex>` signature header against
// the shared webhook secret. The signed payload is "<t>.<body>" and the
// comparison is constant-time.
func (s *StripeService) VerifyWebhookSignature(payload []byte, header string) error {
	var timestamp string
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			timestamp = pair[1]
		case "v1":
			candidates = append(candidates, pair[1])
		}
	}

	if timestamp == "" || len(candidates) == 0 {
		return models.ErrSignatureInvalid
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return models.ErrSignatureInvalid
	}

	if age := time.Since(time.Unix(ts, 0)); age > signatureTolerance || age < -signatureTolerance {
		return models.ErrSignatureInvalid
	}

	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}

	return models.ErrSignatureInvalid
}

// SignWebhookPayload produces a signature header for a payload. Used by tests
// and local tooling to fabricate deliveries.
func (s *StripeService) SignWebhookPayload(payload []byte, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)

	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}
