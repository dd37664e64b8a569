package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Payment provider webhook deliveries by event type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets created by order finalization",
		},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_checkins_total",
			Help: "Ticket check-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	transfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transfers_total",
			Help: "Ticket transfer attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordWebhookEvent counts one processed webhook delivery
func RecordWebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordTicketsIssued counts tickets created by a successful finalize
func RecordTicketsIssued(count int) {
	ticketsIssued.Add(float64(count))
}

// RecordCheckIn counts one check-in attempt
func RecordCheckIn(outcome string) {
	checkIns.WithLabelValues(outcome).Inc()
}

// RecordTransfer counts one transfer attempt
func RecordTransfer(outcome string) {
	transfers.WithLabelValues(outcome).Inc()
}
