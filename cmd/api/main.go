package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kklick/funnel-api/internal/entity"
	"github.com/kklick/funnel-api/internal/infra/database"
	"github.com/kklick/funnel-api/internal/infra/http/handlers"
	"github.com/kklick/funnel-api/internal/infra/http/middleware"
	"github.com/kklick/funnel-api/internal/infra/mail"
	"github.com/kklick/funnel-api/internal/infra/queue"
	"github.com/kklick/funnel-api/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("ensuring schema: %v", err)
	}

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)
	userRepo := database.NewUserRepository(db)

	seedAdminUser(userRepo)

	// 2. Notification side-channel. The funnel keeps capturing leads when
	// the broker is down; notifications are then log-only.
	var notifier usecase.NotificationPublisherInterface
	rabbit, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Printf("RabbitMQ unavailable, lead notifications disabled: %v", err)
	} else {
		defer rabbit.Close()
		notifier = queue.NewProducer(rabbit.Conn, rabbit.Ch)

		mailSender := mail.NewEmailSender(
			os.Getenv("MAIL_HOST"), mailPort(), os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
			os.Getenv("MAIL_FROM"), os.Getenv("NOTIFY_TO"),
		)
		worker := queue.NewWorker(rabbit.Ch, mailSender)
		go worker.Start(queue.QueueName)
	}

	// 3. UseCases
	captureLeadUC := usecase.NewCaptureLeadUseCase(leadRepo, notifier)
	statsUC := usecase.NewStatsUseCase(analyticsRepo, leadRepo)

	// 4. Handlers
	leadHandler := handlers.NewLeadHandler(captureLeadUC, leadRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsRepo, statsUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitConn(rabbit))

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{corsOrigin()},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Post("/api/leads", leadHandler.Create)
	r.Post("/api/analytics/pageview", analyticsHandler.PageView)
	r.Post("/api/analytics/event", analyticsHandler.Event)

	// Admin surface: lead PII and aggregates sit behind the same credential.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(userRepo))
		r.Get("/api/leads", leadHandler.List)
		r.Get("/api/analytics/stats", analyticsHandler.Stats)
	})

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("funnel API listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func seedAdminUser(users entity.UserRepositoryInterface) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Printf("ADMIN_USERNAME/ADMIN_PASSWORD not set, admin endpoints unreachable")
		return
	}

	user, err := entity.NewUser(username, password)
	if err != nil {
		log.Printf("seeding admin user: %v", err)
		return
	}
	if err := users.Create(context.Background(), user); err != nil {
		log.Printf("seeding admin user: %v", err)
	}
}

func mailPort() int {
	port, err := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if err != nil {
		return 587
	}
	return port
}

func corsOrigin() string {
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		return origin
	}
	return "*"
}

func rabbitConn(r *queue.RabbitMQ) *amqp.Connection {
	if r == nil {
		return nil
	}
	return r.Conn
}
