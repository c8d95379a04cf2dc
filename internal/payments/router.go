package payments

import (
	"github.com/hanSiey/pppa-management-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(router *gin.RouterGroup, controller Controller) {
	// Public - bank accounts shown on the reservation payment page
	public := router.Group("/banking-details")
	{
		public.GET("", controller.ListActiveBankingDetails) // GET /api/v1/banking-details
	}

	// Admin - the ledger is staff-only
	admin := router.Group("/admin/payments")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("", controller.RecordPayment)               // POST /api/v1/admin/payments
		admin.GET("", controller.ListPayments)                 // GET /api/v1/admin/payments
		admin.GET("/stats", controller.GetStats)               // GET /api/v1/admin/payments/stats
		admin.GET("/:id", controller.GetPayment)               // GET /api/v1/admin/payments/:id
		admin.POST("/:id/complete", controller.MarkCompleted)  // POST /api/v1/admin/payments/:id/complete
		admin.POST("/:id/fail", controller.MarkFailed)         // POST /api/v1/admin/payments/:id/fail
		admin.POST("/:id/refund", controller.MarkRefunded)     // POST /api/v1/admin/payments/:id/refund
		admin.DELETE("/:id", controller.DeletePayment)         // DELETE /api/v1/admin/payments/:id
	}

	adminLedger := router.Group("/admin/reservations/:id/ledger")
	adminLedger.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminLedger.GET("", controller.GetLedger) // GET /api/v1/admin/reservations/:id/ledger
	}

	adminRefunds := router.Group("/admin/refunds")
	adminRefunds.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminRefunds.POST("", controller.RequestRefund)                    // POST /api/v1/admin/refunds
		adminRefunds.GET("", controller.ListRefunds)                       // GET /api/v1/admin/refunds
		adminRefunds.POST("/:refundId/approve", controller.ApproveRefund)  // POST /api/v1/admin/refunds/:refundId/approve
		adminRefunds.POST("/:refundId/process", controller.ProcessRefund)  // POST /api/v1/admin/refunds/:refundId/process
		adminRefunds.POST("/:refundId/reject", controller.RejectRefund)    // POST /api/v1/admin/refunds/:refundId/reject
	}

	adminBanking := router.Group("/admin/banking-details")
	adminBanking.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminBanking.GET("", controller.ListBankingDetails)      // GET /api/v1/admin/banking-details
		adminBanking.POST("", controller.CreateBankingDetail)    // POST /api/v1/admin/banking-details
		adminBanking.PUT("/:id", controller.UpdateBankingDetail) // PUT /api/v1/admin/banking-details/:id
		adminBanking.DELETE("/:id", controller.DeleteBankingDetail)
	}
}
