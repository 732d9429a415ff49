package main

import (
	"log"
	"time"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/config"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/clients"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/handler"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/middleware"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/payment"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/publisher"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/repository"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/service"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/pkg/database"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqPublisher.Close()

	eventPublisher := publisher.New(mqPublisher)

	// Repositories
	bookingRepo := repository.NewBookingRepository(db)
	txRepo := repository.NewTransactionRepository(db)

	// Payment processor
	gateway := payment.NewSimulatedGateway(time.Now().UnixNano())
	processor := payment.NewProcessor(txRepo, gateway, eventPublisher, cfg.PaymentMaxAmount)

	// Collaborators: real HTTP clients, or in-memory fakes for local runs.
	users, cinema := buildCollaborators(cfg)

	bookingSvc := service.NewBookingService(
		bookingRepo,
		users,
		cinema,
		processor,
		eventPublisher,
		time.Duration(cfg.SeatLockTTLSeconds)*time.Second,
	)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-service"})
	})

	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(processor, bookingSvc).RegisterRoutes(e)

	log.Printf("Booking Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

func buildCollaborators(cfg config.Config) (clients.UserService, clients.CinemaService) {
	var users clients.UserService
	if cfg.UserServiceURL != "" {
		users = clients.NewHTTPUserService(cfg.UserServiceURL)
	} else {
		log.Println("[Booking] USER_SERVICE_URL unset, using in-memory user service")
		users = clients.NewMemoryUserService(clients.User{
			ID:        "u1",
			Email:     "u1@example.com",
			FirstName: "Test",
			LastName:  "User",
		})
	}

	var cinema clients.CinemaService
	if cfg.CinemaServiceURL != "" {
		cinema = clients.NewHTTPCinemaService(cfg.CinemaServiceURL)
	} else {
		log.Println("[Booking] CINEMA_SERVICE_URL unset, using in-memory cinema service")
		cinema = clients.NewMemoryCinemaService(clients.ShowtimeDetails{
			ShowtimeID: "r1",
			MovieID:    "m1",
			CinemaID:   "c1",
			ScreenID:   "s1",
			StartTime:  time.Now().Add(24 * time.Hour),
			EndTime:    time.Now().Add(26 * time.Hour),
			BasePrice:  15.99,
			MovieTitle: "Sample Movie",
			CinemaName: "Sample Cinema",
		})
	}

	return users, cinema
}
