package payments

import (
	"boletera/internal/shared/config"
	"boletera/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures settlement routes
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	payments := rg.Group("/payments")
	{
		payments.POST("", controller.CreatePayment)    // POST /api/v1/payments
		payments.GET("/return", controller.Return)     // GET /api/v1/payments/return?token_ws=...
		payments.POST("/return", controller.Return)    // POST /api/v1/payments/return
		payments.POST("/webhook", controller.Webhook)  // POST /api/v1/payments/webhook
		payments.GET("/:id", controller.GetPayment)    // GET /api/v1/payments/:id
	}

	internal := rg.Group("/internal/payments")
	internal.Use(middleware.InternalOnly(cfg))
	{
		internal.POST("/:id/refund", controller.Refund) // POST /api/v1/internal/payments/:id/refund
	}
}
