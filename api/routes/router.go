// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/hanSiey/pppa-management-backend/internal/analytics"
	"github.com/hanSiey/pppa-management-backend/internal/auth"
	"github.com/hanSiey/pppa-management-backend/internal/events"
	"github.com/hanSiey/pppa-management-backend/internal/notifications"
	"github.com/hanSiey/pppa-management-backend/internal/payments"
	"github.com/hanSiey/pppa-management-backend/internal/reservations"
	"github.com/hanSiey/pppa-management-backend/internal/shared/config"
	"github.com/hanSiey/pppa-management-backend/internal/shared/database"
	"github.com/hanSiey/pppa-management-backend/internal/shared/storage"
	"github.com/hanSiey/pppa-management-backend/pkg/cache"
	"github.com/hanSiey/pppa-management-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	log    *logger.Logger
	store  storage.Storage

	// Set when a notification pipeline is configured; nil disables delivery
	notificationService notifications.Service

	cacheService       cache.Service        // shared across features when Redis is up
	reservationService reservations.Service // exposed for background jobs
	authRepo           auth.Repository      // exposed for account lookups
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger, store storage.Storage, notificationService notifications.Service) *Router {
	return &Router{
		config:              cfg,
		db:                  db,
		log:                 log,
		store:               store,
		notificationService: notificationService,
	}
}

// ReservationService returns the wired reservation service. Only valid after
// SetupRoutes has run; the expiry sweeper and ledger verifier run against it.
func (r *Router) ReservationService() reservations.Service {
	return r.reservationService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Cache is optional; every feature falls back to the database when Redis
	// is unavailable.
	if client := r.db.GetRedisClient(); client != nil {
		r.cacheService = cache.NewService(client)
	}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupReservationRoutes(api)
		r.setupPaymentRoutes(api)
		r.setupAnalyticsRoutes(api)
		r.setupNotificationRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "pppa-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "pppa-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	r.authRepo = authRepo

	authRouter.SetupRoutes(rg)
}

// setupEventRoutes configures event and ticket type management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo)

	if r.cacheService != nil {
		eventService.SetCacheService(r.cacheService)
	}

	eventController := events.NewController(eventService)

	events.SetupEventRoutes(rg, eventController)
}

// setupReservationRoutes configures the reservation and payment-proof flow
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())
	reservationService := reservations.NewService(reservationRepo, r.store, r.log, r.config.Reservation.HoldDuration, r.config.Currency)

	if r.notificationService != nil {
		reservationService.SetNotifier(r.notificationService)
	}
	if r.authRepo != nil {
		reservationService.SetUserDirectory(auth.NewUserServiceAdapter(r.authRepo))
	}

	r.reservationService = reservationService

	reservationController := reservations.NewController(reservationService, r.config.Upload)

	reservations.SetupReservationRoutes(rg, reservationController)
}

// setupPaymentRoutes configures the payment ledger and refund routes
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())
	reconciler := reservations.NewReconciler(reservationRepo)

	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	paymentService := payments.NewService(paymentRepo, reconciler, r.log, r.config.Currency)
	paymentController := payments.NewController(paymentService)

	payments.SetupPaymentRoutes(rg, paymentController)
}

// setupAnalyticsRoutes configures tracking and dashboard routes
func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	analyticsService := analytics.NewService(analyticsRepo)

	if r.cacheService != nil {
		analyticsService.SetCacheService(r.cacheService)
	}

	analyticsController := analytics.NewController(analyticsService)

	analytics.SetupAnalyticsRoutes(rg, analyticsController)
}

// setupNotificationRoutes configures the delivery audit trail routes
func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	if r.notificationService == nil {
		return
	}

	notificationController := notifications.NewController(r.notificationService)

	notifications.SetupNotificationRoutes(rg, notificationController)
}
