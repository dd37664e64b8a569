package handlers

import (
	"net/http"

	"tixwell/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires all lifecycle endpoints onto a chi router
func NewRouter(orders *OrderHandler, tickets *TicketHandler, webhooks *WebhookHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/payment", webhooks.HandleNotification)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.StartCheckout)
		r.Get("/{id}", orders.GetOrder)
		r.Post("/{id}/attendees", orders.CreateAttendee)
		r.Get("/{id}/tickets", tickets.ListByOrder)
	})

	r.Post("/tickets/{code}/checkin", tickets.CheckIn)
	r.Post("/attendees/{id}/transfer", tickets.Transfer)

	return r
}
