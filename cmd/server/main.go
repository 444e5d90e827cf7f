package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/artisanhub/backend/internal/alerts"
	"github.com/artisanhub/backend/internal/config"
	"github.com/artisanhub/backend/internal/db"
	httpHandlers "github.com/artisanhub/backend/internal/http/handlers"
	httpRouter "github.com/artisanhub/backend/internal/http/router"
	"github.com/artisanhub/backend/internal/logger"
	"github.com/artisanhub/backend/internal/paystack"
	"github.com/artisanhub/backend/internal/repository"
	"github.com/artisanhub/backend/internal/service"
)

func main() {
	// Context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load configuration: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Database and migrations.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: failed to connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// External clients.
	paymentProcessor := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	alertClient := alerts.NewClient(cfg.AlertWebhookURL)

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	payoutRepo := repository.NewPayoutRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Services.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo)
	artisanService := service.NewArtisanService(userRepo)
	payoutService := service.NewPayoutService(payoutRepo, notificationService, cfg.MinPayoutAmount)
	disputeService := service.NewDisputeService(disputeRepo, jobRepo, notificationService, cfg.DisputeArtisanShareRate)
	paymentService := service.NewPaymentService(jobRepo, userRepo, paymentProcessor, notificationService,
		cfg.PaymentCurrency, cfg.PaymentCallback, cfg.InvoiceArtisanShareRate, cfg.DefaultBookingWindow)

	var jobService *service.JobService
	if alertClient != nil {
		jobService = service.NewJobService(jobRepo, userRepo, notificationService, alertClient,
			cfg.InvoiceArtisanShareRate, cfg.DefaultBookingWindow)
	} else {
		jobService = service.NewJobService(jobRepo, userRepo, notificationService, nil,
			cfg.InvoiceArtisanShareRate, cfg.DefaultBookingWindow)
	}

	// HTTP handlers.
	authHandler := httpHandlers.NewAuthHandler(authService)
	artisanHandler := httpHandlers.NewArtisanHandler(artisanService)
	jobHandler := httpHandlers.NewJobHandler(jobService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	payoutHandler := httpHandlers.NewPayoutHandler(payoutService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupRouter(cfg,
		authHandler, artisanHandler, jobHandler, paymentHandler,
		disputeHandler, payoutHandler, notificationHandler, healthHandler,
		tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Shut the server down when the signal arrives.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

// safeClose closes the database connection.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: error closing database: %v", err)
	}
}
