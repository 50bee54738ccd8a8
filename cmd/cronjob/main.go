package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"carrental-backend/internal/config"
	"carrental-backend/internal/gateway"
	"carrental-backend/internal/jobs"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/scheduler"
	"carrental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.Bool("run-once", false, "Run the stale-payment sweep once and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Car Rental Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Payment Gateway Client
	var gatewayClient gateway.Client
	if cfg.Flutterwave.Provider == "mock" {
		gatewayClient = gateway.NewMockClient()
	} else {
		gatewayClient = gateway.NewFlutterwaveClient(
			cfg.Flutterwave.BaseURL,
			cfg.Flutterwave.SecretKey,
			cfg.Flutterwave.WebhookSecret,
			time.Duration(cfg.Flutterwave.TimeoutSeconds)*time.Second,
		)
	}

	// Initialize Notifier
	var emailSvc service.EmailService
	if cfg.Email.Provider == "sendgrid" {
		emailSvc = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.Email.From)
	} else {
		emailSvc = service.NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.Email.From)
	}
	smsSvc := service.NewSMSService(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.SenderID)
	receiptNotifier := service.NewNotifier(emailSvc, smsSvc, store.NotificationRepository)

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

	jobRunner := jobs.NewJobRunner(paymentSvc, store.PaymentRepository, cfg)

	if *runOnce {
		jobRunner.ReverifyStalePayments()
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Block until interrupted
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down cronjob runner...")
	sched.Stop()
}
