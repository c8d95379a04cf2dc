package events

import (
	"github.com/hanSiey/pppa-management-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse published events
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.ListEvents)     // GET /api/v1/events
		publicEvents.GET("/:slug", controller.GetEvent) // GET /api/v1/events/:slug
	}

	// Admin routes - staff manage events, sub events and ticket types
	adminEvents := router.Group("/admin/events")
	adminEvents.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminEvents.POST("", controller.CreateEvent)            // POST /api/v1/admin/events
		adminEvents.PUT("/:eventId", controller.UpdateEvent)    // PUT /api/v1/admin/events/:eventId
		adminEvents.DELETE("/:eventId", controller.DeleteEvent) // DELETE /api/v1/admin/events/:eventId

		adminEvents.POST("/:eventId/sub-events", controller.CreateSubEvent) // POST /api/v1/admin/events/:eventId/sub-events

		adminEvents.POST("/:eventId/ticket-types", controller.CreateTicketType) // POST /api/v1/admin/events/:eventId/ticket-types
		adminEvents.GET("/:eventId/ticket-types", controller.ListTicketTypes)   // GET /api/v1/admin/events/:eventId/ticket-types
	}

	adminSubEvents := router.Group("/admin/sub-events")
	adminSubEvents.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminSubEvents.DELETE("/:subEventId", controller.DeleteSubEvent) // DELETE /api/v1/admin/sub-events/:subEventId
	}

	adminTicketTypes := router.Group("/admin/ticket-types")
	adminTicketTypes.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminTicketTypes.PUT("/:ticketTypeId", controller.UpdateTicketType)    // PUT /api/v1/admin/ticket-types/:ticketTypeId
		adminTicketTypes.DELETE("/:ticketTypeId", controller.DeleteTicketType) // DELETE /api/v1/admin/ticket-types/:ticketTypeId
	}
}
