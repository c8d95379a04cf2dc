package analytics

import (
	"github.com/hanSiey/pppa-management-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(router *gin.RouterGroup, controller Controller) {
	// Public tracking endpoint; user attribution when a token is present
	public := router.Group("/analytics")
	public.Use(middleware.OptionalAuth())
	{
		public.POST("/track", controller.Track) // POST /api/v1/analytics/track
	}

	admin := router.Group("/admin/analytics")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/dashboard", controller.GetDashboard) // GET /api/v1/admin/analytics/dashboard
	}
}
