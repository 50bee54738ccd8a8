package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	api "carrental-backend/internal/api/http"
	"carrental-backend/internal/config"
	"carrental-backend/internal/gateway"
	"carrental-backend/internal/jobs"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/scheduler"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Car Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	authMW := api.NewAuthMiddleware(tokenManager)

	// Initialize Payment Gateway Client
	var gatewayClient gateway.Client
	if cfg.Flutterwave.Provider == "mock" {
		logger.Info("Using mock payment gateway")
		gatewayClient = gateway.NewMockClient()
	} else {
		gatewayClient = gateway.NewFlutterwaveClient(
			cfg.Flutterwave.BaseURL,
			cfg.Flutterwave.SecretKey,
			cfg.Flutterwave.WebhookSecret,
			time.Duration(cfg.Flutterwave.TimeoutSeconds)*time.Second,
		)
	}

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.Email.Provider == "sendgrid" {
		logger.Info("Using SendGrid email provider")
		emailSvc = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.Email.From)
	} else {
		logger.Info("Using SMTP email provider", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		emailSvc = service.NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.Email.From)
	}

	smsSvc := service.NewSMSService(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.SenderID)
	receiptNotifier := service.NewNotifier(emailSvc, smsSvc, store.NotificationRepository)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	carSvc := service.NewCarService(store.CarRepository, store.UserRepository, emailSvc, store.NotificationRepository)
	paymentSvc := service.NewPaymentService(
		store,
		store.PaymentRepository,
		store.CarRepository,
		store.UserRepository,
		gatewayClient,
		receiptNotifier,
		service.PaymentServiceConfig{
			RedirectURL:   cfg.Flutterwave.RedirectURL,
			VerifyTimeout: time.Duration(cfg.Flutterwave.TimeoutSeconds) * time.Second,
		},
	)
	defer paymentSvc.Flush()

	// Initialize HTTP handlers
	authHandler := api.NewAuthHandler(authSvc)
	carHandler := api.NewCarHandler(carSvc)
	paymentHandler := api.NewPaymentHandler(paymentSvc, cfg.Flutterwave.SuccessURL, cfg.Flutterwave.FailureURL)

	router := api.NewRouter(authMW, authHandler, carHandler, paymentHandler)

	// Start the stale-payment janitor alongside the server
	jobRunner := jobs.NewJobRunner(paymentSvc, store.PaymentRepository, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
