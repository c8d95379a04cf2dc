package notifications

import (
	"github.com/hanSiey/pppa-management-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupNotificationRoutes(router *gin.RouterGroup, controller Controller) {
	// Admin routes - delivery audit trail only; nothing guest-facing here
	admin := router.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/notifications", controller.ListLogs)                           // GET /api/v1/admin/notifications
		admin.GET("/reservations/:id/notifications", controller.ListByReservation) // GET /api/v1/admin/reservations/:id/notifications
	}
}
