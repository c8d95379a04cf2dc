package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanSiey/pppa-management-backend/api/routes"
	"github.com/hanSiey/pppa-management-backend/internal/notifications"
	"github.com/hanSiey/pppa-management-backend/internal/reservations"
	"github.com/hanSiey/pppa-management-backend/internal/shared/config"
	"github.com/hanSiey/pppa-management-backend/internal/shared/database"
	"github.com/hanSiey/pppa-management-backend/internal/shared/storage"
	"github.com/hanSiey/pppa-management-backend/pkg/logger"
	"github.com/hanSiey/pppa-management-backend/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Payment proof uploads live on local disk
	store, err := storage.NewLocalStorage(cfg.Upload.Path)
	if err != nil {
		appLogger.Error("failed to initialize upload storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.GetRedisClient() != nil {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:             cfg.RateLimit.Enabled,
			WindowDuration:      cfg.RateLimit.WindowDuration,
			DefaultRequests:     cfg.RateLimit.DefaultRequests,
			PublicRequests:      cfg.RateLimit.PublicRequests,
			AuthRequests:        cfg.RateLimit.AuthRequests,
			ReservationRequests: cfg.RateLimit.ReservationRequests,
			AdminRequests:       cfg.RateLimit.AdminRequests,
			AnalyticsRequests:   cfg.RateLimit.AnalyticsRequests,
			HealthRequests:      cfg.RateLimit.HealthRequests,
			WhitelistedIPs:      cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Notification pipeline. Kafka and SMTP are both optional; the service
	// degrades to direct delivery and then to a silent no-op, always keeping
	// the audit log.
	notificationService, notificationConsumer := setupNotifications(cfg, db, appLogger)
	defer notificationService.Close()

	if notificationConsumer != nil {
		consumerCtx, consumerCancel := context.WithCancel(context.Background())
		defer consumerCancel()

		if err := notificationConsumer.StartConsumers(consumerCtx, cfg.Kafka.ConsumerWorkers); err != nil {
			appLogger.Error("Failed to start notification consumers", slog.Any("error", err))
		} else {
			appLogger.Info("Notification consumers started", slog.Int("workers", cfg.Kafka.ConsumerWorkers))
			defer notificationConsumer.Stop()
		}
	}

	// Setup router with rate limiter
	appRouter := routes.NewRouter(cfg, db, appLogger, store, notificationService)
	engine := setupEngine(cfg, appRouter, rateLimiter)

	// Background jobs: expiry sweeps and ledger verification
	jobProcessor := reservations.NewJobProcessor(appRouter.ReservationService(), &reservations.JobConfig{
		ExpirySweepInterval:  cfg.Reservation.ExpirySweepInterval,
		LedgerVerifyInterval: cfg.Reservation.LedgerVerifyInterval,
		BatchSize:            cfg.Reservation.ExpirySweepBatchSize,
	})
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	jobProcessor.Start(jobCtx)
	defer jobProcessor.Stop()

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", (db.GetRedisClient() != nil)),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("kafka_notifications", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// setupNotifications wires the Kafka producer, SMTP sender and audit log into
// a notification service. Any piece that fails to come up is logged and left
// out rather than blocking startup.
func setupNotifications(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (notifications.Service, notifications.Consumer) {
	logRepo := notifications.NewRepository(db.GetPostgreSQL())

	var emailService notifications.EmailService
	if cfg.Email.SMTPHost != "" {
		var err error
		emailService, err = notifications.NewSMTPEmailService(&notifications.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    true,
		})
		if err != nil {
			appLogger.Error("Failed to initialize SMTP email service", slog.Any("error", err))
			emailService = nil
		}
	}

	var producer notifications.Producer
	var consumer notifications.Consumer
	if cfg.Kafka.Enabled {
		producerConfig := notifications.DefaultProducerConfig()
		producerConfig.Brokers = cfg.Kafka.Brokers
		producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic

		var err error
		producer, err = notifications.NewKafkaProducer(producerConfig)
		if err != nil {
			appLogger.Error("Failed to initialize Kafka producer", slog.Any("error", err))
			producer = nil
		}

		if emailService != nil {
			consumerConfig := notifications.DefaultConsumerConfig()
			consumerConfig.Brokers = cfg.Kafka.Brokers
			consumerConfig.GroupID = cfg.Kafka.ConsumerGroupID
			consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}

			consumer, err = notifications.NewKafkaConsumer(consumerConfig, emailService, logRepo)
			if err != nil {
				appLogger.Error("Failed to initialize Kafka consumer", slog.Any("error", err))
				consumer = nil
			}
		}
	}

	return notifications.NewService(producer, emailService, logRepo, cfg.Currency), consumer
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
