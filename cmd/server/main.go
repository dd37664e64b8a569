package main

import (
	"fmt"
	"log"
	"net/http"

	"tixwell/internal/clock"
	"tixwell/internal/config"
	"tixwell/internal/database"
	"tixwell/internal/handlers"
	"tixwell/internal/repositories"
	"tixwell/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Repositories
	orderRepo := repositories.NewOrderRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	attendeeRepo := repositories.NewAttendeeRepository(db.DB)

	// Services
	clk := clock.NewSystem()
	stripeService := services.NewStripeService(services.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
		Currency:      cfg.Stripe.Currency,
	})
	issuer := services.NewTicketIssuer(clk)
	orderService := services.NewOrderService(
		orderRepo, attendeeRepo, ticketRepo, issuer, stripeService, clk, cfg.Orders.PaymentDeadline)
	attendeeService := services.NewAttendeeService(attendeeRepo)
	checkInService := services.NewCheckInService(ticketRepo, attendeeRepo, clk)
	webhookService := services.NewWebhookService(stripeService, orderService)

	// Handlers
	router := handlers.NewRouter(
		handlers.NewOrderHandler(orderService, attendeeService),
		handlers.NewTicketHandler(checkInService),
		handlers.NewWebhookHandler(webhookService),
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server stopped:", err)
	}
}
