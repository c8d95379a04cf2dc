package auth

import (
	"github.com/hanSiey/pppa-management-backend/internal/shared/config"
	"github.com/hanSiey/pppa-management-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

type Router struct {
	controller *Controller
	config     *config.Config
}

func NewRouter(controller *Controller) *Router {
	return &Router{
		controller: controller,
		config:     config.Load(),
	}
}

// SetupRoutes mounts /auth. Register, login, refresh and logout are public;
// password changes and the identity endpoint require a valid access token.
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", r.controller.Register)
		auth.POST("/login", r.controller.Login)
		auth.POST("/refresh", r.controller.RefreshToken)
		auth.POST("/logout", r.controller.Logout)

		protected := auth.Group("")
		protected.Use(middleware.JWTAuthWithConfig(r.config))
		{
			protected.PUT("/change-password", r.controller.ChangePassword)
			protected.GET("/me", r.controller.GetMe)
		}
	}
}
