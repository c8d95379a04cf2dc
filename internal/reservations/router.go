package reservations

import (
	"github.com/hanSiey/pppa-management-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(router *gin.RouterGroup, controller Controller) {
	// Guest routes - the reference code is the credential. OptionalAuth so an
	// authenticated user's account email wins on creation.
	guest := router.Group("/reservations")
	guest.Use(middleware.OptionalAuth())
	{
		guest.POST("", controller.CreateReservation)                                  // POST /api/v1/reservations
		guest.GET("/ref/:referenceCode", controller.GetByReferenceCode)               // GET /api/v1/reservations/ref/:referenceCode
		guest.POST("/ref/:referenceCode/proofs", controller.SubmitPaymentProof)       // POST /api/v1/reservations/ref/:referenceCode/proofs
		guest.GET("/ref/:referenceCode/calendar", controller.CalendarLinks)           // GET /api/v1/reservations/ref/:referenceCode/calendar
		guest.GET("/ref/:referenceCode/calendar.ics", controller.CalendarICS)         // GET /api/v1/reservations/ref/:referenceCode/calendar.ics
	}

	// User routes - authenticated users manage their own reservations
	user := router.Group("/reservations")
	user.Use(middleware.JWTAuth())
	{
		user.GET("", controller.ListMyReservations)       // GET /api/v1/reservations
		user.GET("/:id", controller.GetReservation)       // GET /api/v1/reservations/:id
		user.DELETE("/:id", controller.CancelReservation) // DELETE /api/v1/reservations/:id
	}

	// Admin routes - staff review proofs and manage every reservation
	admin := router.Group("/admin/reservations")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("", controller.ListAllReservations)          // GET /api/v1/admin/reservations
		admin.GET("/:id", controller.GetReservation)           // GET /api/v1/admin/reservations/:id
		admin.DELETE("/:id", controller.CancelReservation)     // DELETE /api/v1/admin/reservations/:id
		admin.POST("/:id/attended", controller.MarkAttended)   // POST /api/v1/admin/reservations/:id/attended
		admin.GET("/:id/proofs", controller.ListProofs)        // GET /api/v1/admin/reservations/:id/proofs
		admin.POST("/verify-ledger", controller.VerifyLedger)  // POST /api/v1/admin/reservations/verify-ledger
	}

	adminProofs := router.Group("/admin/proofs")
	adminProofs.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminProofs.POST("/:proofId/approve", controller.ApproveProof) // POST /api/v1/admin/proofs/:proofId/approve
		adminProofs.POST("/:proofId/reject", controller.RejectProof)   // POST /api/v1/admin/proofs/:proofId/reject
	}
}
